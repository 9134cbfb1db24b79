package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/GreatValueCreamSoda/gonv12"
)

// frame is one tightly packed NV12 frame travelling through the pipeline.
type frame struct {
	// Position in the output sequence (0 to numFrames-1).
	index int
	data  []byte

	readTime, drawTime, writeTime time.Duration
}

// FrameOverlay reads frames from a source, draws the configured overlays on
// them in several workers and writes them to a sink in their original order.
type FrameOverlay struct {
	cfg OverlayConfig

	source frameSource
	sink   frameSink

	colorspace nv12.Colorspace

	// Number of frames to process, or -1 to read until the source ends.
	numFrames int

	overlays []OverlayHandler

	// Fixed set of frame buffers shared by the reader and the writer.
	pool BlockingPool[*frame]

	// Frames read from the source, waiting for a worker.
	frames chan *frame

	// Frames with overlays applied, waiting for the writer.
	drawn chan *frame

	errs chan error

	written int
	timings map[string][]float64
}

// NewFrameOverlay validates cfg, opens the source and the sink and builds the
// overlays.
func NewFrameOverlay(cfg OverlayConfig) (*FrameOverlay, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	overlays, err := cfg.BuildOverlays()
	if err != nil {
		return nil, err
	}

	source, err := cfg.OpenSource()
	if err != nil {
		return nil, err
	}

	numFrames, err := cfg.FrameCount(source)
	if err != nil {
		source.Close()
		return nil, err
	}

	sink, err := cfg.OpenSink(source.Colorspace())
	if err != nil {
		source.Close()
		return nil, err
	}

	fo := &FrameOverlay{
		cfg:        cfg,
		source:     source,
		sink:       sink,
		colorspace: source.Colorspace(),
		numFrames:  numFrames,
		overlays:   overlays,
	}

	fo.initChannels()
	fo.initPool()

	return fo, nil
}

// Close flushes the sink and releases the source.
func (fo *FrameOverlay) Close() error {
	sinkErr := fo.sink.Close()
	sourceErr := fo.source.Close()
	return errors.Join(sinkErr, sourceErr)
}

// FramesWritten returns how many frames reached the sink.
func (fo *FrameOverlay) FramesWritten() int { return fo.written }

// Timings returns per-frame read, draw and write durations in milliseconds,
// in output order. It is only valid after Run has returned.
func (fo *FrameOverlay) Timings() map[string][]float64 { return fo.timings }

func (fo *FrameOverlay) colorspaceString() string {
	rng := "full"
	if fo.colorspace.ColorRange == nv12.ColorRangeLimited {
		rng = "limited"
	}
	return fmt.Sprintf("%dx%d NV12 (%s range)", fo.colorspace.Width,
		fo.colorspace.Height, rng)
}

// Run processes every frame. It returns nil once all frames have been
// written, or the first error raised by any stage.
func (fo *FrameOverlay) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)

	// Stages finish before Run returns, so Close never races them.
	var stages sync.WaitGroup
	defer stages.Wait()
	defer cancel()

	stages.Add(1)
	go func() {
		defer stages.Done()
		defer close(fo.frames)
		fo.readFrames(ctx)
	}()

	var drawWg sync.WaitGroup
	drawWg.Add(fo.cfg.WorkerCount)
	for i := range fo.cfg.WorkerCount {
		go func() {
			defer drawWg.Done()
			fo.drawWorker(ctx, i)
		}()
	}

	stages.Add(1)
	go func() {
		defer stages.Done()
		drawWg.Wait()
		close(fo.drawn)
	}()

	done := make(chan struct{})
	stages.Add(1)
	go func() {
		defer stages.Done()
		defer close(done)
		fo.writeFrames(ctx)
	}()

	select {
	case err := <-fo.errs:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		// A failing stage may have finished the writer early.
		select {
		case err := <-fo.errs:
			return err
		default:
			return ctx.Err()
		}
	}
}

func (fo *FrameOverlay) initChannels() {
	fo.frames = make(chan *frame, 1)
	fo.drawn = make(chan *frame, fo.cfg.WorkerCount)
	fo.errs = make(chan error, fo.cfg.WorkerCount+2)
}

// initPool allocates every frame buffer up front. Two buffers per worker
// keep the workers busy while the writer waits for an out of order frame.
func (fo *FrameOverlay) initPool() {
	capacity := fo.cfg.WorkerCount*2 + 2
	fo.pool = NewBlockingPool[*frame](capacity)
	for range capacity {
		fo.pool.Put(&frame{data: make([]byte, fo.colorspace.FrameSize())})
	}
	logf(LogDebug, "Allocated %d frame buffers of %d bytes", capacity,
		fo.colorspace.FrameSize())
}

// readFrames reads frames from the source into pooled buffers until
// numFrames are read or the source is exhausted.
func (fo *FrameOverlay) readFrames(ctx context.Context) {
	logf(LogInfo, "Starting frame read from index %d", fo.cfg.StartIdx)

	i := 0
	for ; fo.numFrames < 0 || i < fo.numFrames; i++ {
		buf, err := fo.pool.GetContext(ctx)
		if err != nil {
			logf(LogError, "Frame read canceled at frame %d: %v", i, err)
			return
		}

		start := time.Now()
		err = fo.source.ReadFrame(buf.data)
		if err == io.EOF {
			fo.pool.Put(buf)
			if fo.numFrames >= 0 {
				fo.errs <- fmt.Errorf("source ended after %d of %d frames",
					i, fo.numFrames)
			}
			break
		}
		if err != nil {
			fo.pool.Put(buf)
			fo.errs <- fmt.Errorf("read frame %d: %w", fo.cfg.StartIdx+i, err)
			logf(LogError, "Error reading frame %d: %v", fo.cfg.StartIdx+i, err)
			return
		}
		buf.index = i
		buf.readTime = time.Since(start)

		select {
		case fo.frames <- buf:
			logf(LogDebug, "Read frame %d successfully", fo.cfg.StartIdx+i)
		case <-ctx.Done():
			fo.pool.Put(buf)
			logf(LogError, "Frame read context canceled at frame %d",
				fo.cfg.StartIdx+i)
			return
		}
	}

	logf(LogInfo, "Finished reading %d frames", i)
}

// drawWorker applies every overlay to frames from the frames channel.
func (fo *FrameOverlay) drawWorker(ctx context.Context, workerID int) {
	logf(LogInfo, "Draw worker thread %d starting", workerID)

	for f := range withContext(ctx, fo.frames) {
		if err := fo.drawFrame(f); err != nil {
			fo.errs <- fmt.Errorf("worker %d: %w", workerID, err)
			logf(LogError, "Drawing failed on worker %d, frame %d: %v",
				workerID, f.index, err)
			return
		}

		select {
		case fo.drawn <- f:
			logf(LogDebug, "Worker %d drew frame %d", workerID,
				fo.cfg.StartIdx+f.index)
		case <-ctx.Done():
			return
		}
	}

	if ctx.Err() != nil {
		logf(LogError, "Worker %d exiting due to context cancellation: %v",
			workerID, ctx.Err())
	} else {
		logf(LogInfo, "Worker %d finished", workerID)
	}
}

func (fo *FrameOverlay) drawFrame(f *frame) error {
	start := time.Now()

	full, exception := nv12.FromBytes(f.data, fo.colorspace.Width,
		fo.colorspace.Height)
	if !exception.IsNone() {
		return exception.GetError()
	}

	var img nv12.GenericImage = full
	if fo.cfg.Half {
		img = nv12.NewHalfImage(full)
	}

	for _, o := range fo.overlays {
		o.Apply(img, fo.cfg.StartIdx+f.index)
	}

	f.drawTime = time.Since(start)
	return nil
}

// writeFrames restores the source order of drawn frames, writes them to the
// sink and returns their buffers to the pool.
func (fo *FrameOverlay) writeFrames(ctx context.Context) {
	fo.timings = map[string][]float64{
		"read_ms":  nil,
		"draw_ms":  nil,
		"write_ms": nil,
	}
	logf(LogInfo, "Starting frame writer")

	pending := make(map[int]*frame)
	next := 0
	defer func() { fo.written = next }()

	for f := range withContext(ctx, fo.drawn) {
		pending[f.index] = f

		for {
			f, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)

			start := time.Now()
			if err := fo.sink.WriteFrame(f.data); err != nil {
				fo.errs <- fmt.Errorf("write frame %d: %w", next, err)
				logf(LogError, "Error writing frame %d: %v", next, err)
				return
			}
			f.writeTime = time.Since(start)

			fo.record(f)
			fo.pool.Put(f)
			next++
		}
	}

	logf(LogInfo, "Finished writing %d frames", next)
}

func (fo *FrameOverlay) record(f *frame) {
	sample := map[string]float64{
		"read_ms":  durationMs(f.readTime),
		"draw_ms":  durationMs(f.drawTime),
		"write_ms": durationMs(f.writeTime),
	}
	for name, v := range sample {
		fo.timings[name] = append(fo.timings[name], v)
	}
	logf(LogDebug, "Wrote frame %d: %s", fo.cfg.StartIdx+f.index,
		prettyMap(sample))
}

func durationMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
