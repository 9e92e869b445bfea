// Command imrdemo records a sample frame with the imrender renderer and
// prints the batching statistics.
package main

import (
	"flag"
	"fmt"
	"image"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal/noop"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/imrender"
	"github.com/gogpu/imrender/color"
	"github.com/gogpu/imrender/gpu"
	"github.com/gogpu/imrender/text"
)

func main() {
	var (
		width   = flag.Int("width", 800, "frame width")
		height  = flag.Int("height", 600, "frame height")
		config  = flag.String("config", "", "TOML configuration file")
		fonts   = flag.String("fonts", "", "font directory (overrides the config)")
		device  = flag.String("device", "recorder", "device: recorder or noop")
		frames  = flag.Int("frames", 1, "number of frames to render")
		verbose = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *verbose {
		imrender.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	cfg := imrender.DefaultConfig()
	if *config != "" {
		var err error
		if cfg, err = imrender.LoadConfig(*config); err != nil {
			log.Fatal(err)
		}
	}
	if *fonts != "" {
		cfg.FontDir = *fonts
	}

	glyphs := text.NewService(cfg.Text())
	defer glyphs.Close()
	if _, err := glyphs.Catalog().AddFont(goregular.TTF); err != nil {
		log.Fatalf("Failed to load built-in font: %v", err)
	}

	dev, release, err := openDevice(*device)
	if err != nil {
		log.Fatal(err)
	}
	defer release()

	r, err := imrender.New(dev, glyphs, imrender.WithConfig(cfg))
	if err != nil {
		log.Fatal(err)
	}
	defer r.Close()

	photo := gradientImage(1, 640, 480)
	thumb := gradientImage(2, 96, 64)
	for i := range *frames {
		if err := r.BeginFrame(*width, *height); err != nil {
			log.Fatal(err)
		}
		drawScene(r, photo, thumb, float64(i))
		stats, err := r.EndFrame()
		if err != nil {
			log.Fatalf("Frame %d failed: %v", i, err)
		}
		fmt.Printf("frame %d: %+v\n", i, stats)
	}

	as := r.AtlasStats()
	gs := glyphs.Stats()
	fmt.Printf("atlas: %d items on %d pages, %d evictions\n", as.Items, as.Pages, as.Evictions)
	fmt.Printf("glyphs: %d/%d (%.1f%%), hit rate %.2f\n", gs.Len, gs.Capacity, gs.UsedPercent(), gs.HitRate())
	fmt.Printf("fonts: %v\n", glyphs.Catalog().Families())
}

func openDevice(name string) (gpu.Device, func(), error) {
	switch name {
	case "recorder":
		return gpu.NewRecorder(), func() {}, nil
	case "noop":
		open, err := (&noop.Adapter{}).Open(0, gputypes.Limits{})
		if err != nil {
			return nil, nil, fmt.Errorf("open noop adapter: %w", err)
		}
		d, err := gpu.NewHALDeviceFrom(open.Device, open.Queue, gpu.HALOptions{})
		if err != nil {
			return nil, nil, err
		}
		return d, d.Destroy, nil
	}
	return nil, nil, fmt.Errorf("unknown device %q", name)
}

func drawScene(r *imrender.Renderer, photo, thumb *imrender.Image, t float64) {
	// Background
	r.SetColor(imrender.Hex("#1e1e24"))
	r.DrawRect(imrender.R(0, 0, 800, 600))

	// Photo with a drop shadow
	r.SetColor(imrender.RGBA2(0, 0, 0, 0.6))
	r.DrawShadow(imrender.R(40, 40, 480, 360), 12)
	r.SetColorSettings(color.Settings{
		Brightness: [3]float32{1.05, 1.05, 1.05},
		Contrast:   [3]float32{1.1, 1.1, 1.1},
		Saturation: [3]float32{1.2, 1.2, 1.2},
	})
	exposure := color.DefaultExposure()
	exposure.Enabled = true
	exposure.Stops = 0.5
	exposure.Gamma = 2.2
	r.SetExposure(exposure)
	r.SetColorSpace("display-p3", "srgb")
	r.SetImageOptions(imrender.ImageOptions{SoftClip: 0.1, Cache: imrender.CacheDynamic})
	r.SetColor(imrender.White)
	r.DrawImageCover(photo, imrender.R(40, 40, 480, 360))
	r.SetImageOptions(imrender.ImageOptions{})
	r.SetExposure(color.DefaultExposure())

	// Thumbnail strip
	r.Save()
	r.PushClip(imrender.R(540, 40, 220, 360))
	for i := range 6 {
		r.DrawImage(thumb, imrender.R(550, 50+float64(i)*70-t*5, 96, 64))
	}
	r.PopClip()
	r.Restore()

	// Tinted icon
	r.SetColor(imrender.RGB(0.9, 0.6, 0.2))
	r.DrawFilledImage(thumb, imrender.R(40, 400, 24, 16))

	// Controls
	r.SetColor(imrender.RGB(0.25, 0.5, 0.9))
	r.DrawPill(imrender.R(40, 430, 160, 32))
	r.SetColor(imrender.White)
	r.DrawCircle(imrender.Pt(240, 446), 16)
	r.SetLineWidth(2)
	r.DrawPolyline([]imrender.Point{{X: 280, Y: 446}, {X: 520, Y: 446}})
	r.SetLineWidth(0)
	r.DrawPolyline([]imrender.Point{{X: 280, Y: 456}, {X: 520, Y: 456}})

	// Captions
	r.SetFont(imrender.FontInfo{Family: "Go", Face: "Regular", Size: 14})
	r.DrawText("IMG_0042.jpg  6000x4000  ISO 200\n1/250s  f/2.8", imrender.Pt(40, 490))
	r.SetBlendMode(imrender.BlendAdditive)
	r.SetColor(imrender.RGBA2(1, 0.8, 0.3, 0.5))
	r.DrawRects([]imrender.Rect{imrender.R(40, 560, 40, 8), imrender.R(90, 560, 40, 8)})
	r.SetBlendMode(imrender.BlendNormal)
}

// gradientImage builds a synthetic photo.
func gradientImage(uid uint64, w, h int) *imrender.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			o := img.PixOffset(x, y)
			img.Pix[o+0] = uint8(255 * x / w)
			img.Pix[o+1] = uint8(255 * y / h)
			img.Pix[o+2] = 160
			img.Pix[o+3] = 255
		}
	}
	return &imrender.Image{UID: uid, RGBA: img}
}
