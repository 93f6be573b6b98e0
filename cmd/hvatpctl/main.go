// Command hvatpctl drives one HVATP transfer: render a file to a visual
// frame sequence, play the acoustic control-plane packets that accompany
// it, and optionally expose progress over a websocket monitor.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jeongseonghan/hvatp/internal/acoustic"
	"github.com/jeongseonghan/hvatp/internal/audio"
	"github.com/jeongseonghan/hvatp/internal/monitor"
	"github.com/jeongseonghan/hvatp/internal/palette"
	"github.com/jeongseonghan/hvatp/internal/transfer"
	"github.com/jeongseonghan/hvatp/internal/visual"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "demo":
		err = runDemo(os.Args[2:])
	case "devices":
		err = runDevices(os.Args[2:])
	case "send":
		err = runSend(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("hvatpctl: %v", err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: hvatpctl <demo|devices|send> [flags]")
}

func parseMode(name string) (palette.Mode, error) {
	switch name {
	case "robustbw":
		return palette.RobustBW, nil
	case "balanced":
		return palette.Balanced, nil
	case "highdensity":
		return palette.HighDensity, nil
	default:
		return 0, fmt.Errorf("unknown mode %q (want robustbw, balanced, or highdensity)", name)
	}
}

// runDemo encodes a payload to a frame sequence, writes each frame to a
// PNG file, and prints the control-plane packets that would accompany
// it -- a runnable smoke test of the whole pipeline without camera or
// speaker hardware.
func runDemo(args []string) error {
	fs := flag.NewFlagSet("demo", flag.ExitOnError)
	modeName := fs.String("mode", "balanced", "encoding mode: robustbw, balanced, highdensity")
	moduleCount := fs.Int("modules", 80, "module grid size")
	eccLevel := fs.Float64("ecc", 0.3, "RS parity fraction in [0.25, 0.5]")
	outDir := fs.String("out", "./hvatp-demo", "output directory for rendered frames")
	scale := fs.Int("scale", 8, "pixels per module in rendered PNGs")
	message := fs.String("message", "hello from hvatpctl", "payload to encode")
	if err := fs.Parse(args); err != nil {
		return err
	}

	mode, err := parseMode(*modeName)
	if err != nil {
		return err
	}
	visualParams, err := visual.NewParams(mode, *moduleCount, *eccLevel)
	if err != nil {
		return fmt.Errorf("visual params: %w", err)
	}
	audioParams := acoustic.DefaultParams()

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", *outDir, err)
	}

	encoder := visual.NewEncoder(visualParams)
	sequencer := visual.NewFrameSequenceEncoder(encoder)
	frames, err := sequencer.EncodeData([]byte(*message))
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	fmt.Printf("encoded %d byte(s) into %d frame(s)\n", len(*message), len(frames))

	for i, frame := range frames {
		raster := encoder.RenderForDisplay(frame, *scale)
		path := filepath.Join(*outDir, fmt.Sprintf("frame-%03d.png", i))
		if err := writePNG(path, raster); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Printf(" wrote %s\n", path)
	}

	audioBuilder := acoustic.NewAudioPacketBuilder(audioParams)
	ack := audioBuilder.BuildAckPacket(0x1, 0, 0)
	fmt.Printf("ACK packet for frame 0: %d samples\n", len(ack))

	ops := []acoustic.Operator{{Opcode: 0x01, Params: []byte{0x00}}}
	opPacket := audioBuilder.BuildOperatorPacket(ops, 0, 1)
	fmt.Printf("OPERATORS packet: %d samples\n", len(opPacket))

	prng := audioBuilder.BuildPrngPacket(0x01, 0xDEADBEEF, uint64(len(*message)), 0, 2)
	fmt.Printf("PRNG_SEEDS packet: %d samples\n", len(prng))

	return nil
}

func writePNG(path string, raster *visual.Raster) error {
	img := image.NewRGBA(image.Rect(0, 0, raster.Width, raster.Height))
	for y := 0; y < raster.Height; y++ {
		for x := 0; x < raster.Width; x++ {
			c := raster.At(x, y)
			img.Set(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func runDevices(args []string) error {
	if err := audio.Init(); err != nil {
		return fmt.Errorf("init portaudio: %w", err)
	}
	defer audio.Terminate()
	return audio.PrintDevices()
}

// runSend plays a file's visual-frame/acoustic-packet sequence through a
// live Speaker and, optionally, exposes a websocket progress monitor.
func runSend(args []string) error {
	fs := flag.NewFlagSet("send", flag.ExitOnError)
	modeName := fs.String("mode", "balanced", "encoding mode: robustbw, balanced, highdensity")
	moduleCount := fs.Int("modules", 80, "module grid size")
	eccLevel := fs.Float64("ecc", 0.3, "RS parity fraction in [0.25, 0.5]")
	inPath := fs.String("file", "", "path of the file to send")
	monitorAddr := fs.String("monitor-addr", "", "if set, serve websocket progress updates at this address (e.g. :8080)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *inPath == "" {
		return fmt.Errorf("-file is required")
	}

	mode, err := parseMode(*modeName)
	if err != nil {
		return err
	}
	visualParams, err := visual.NewParams(mode, *moduleCount, *eccLevel)
	if err != nil {
		return fmt.Errorf("visual params: %w", err)
	}
	audioParams := acoustic.DefaultParams()

	data, err := os.ReadFile(*inPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", *inPath, err)
	}

	session := transfer.NewSession(visualParams, audioParams)

	if *monitorAddr != "" {
		hub := monitor.NewHub()
		srv := monitor.NewServer(*monitorAddr, hub, session)
		stop := make(chan struct{})
		go hub.Watch(session.Events(), stop)
		go func() {
			if err := srv.Start(); err != nil {
				log.Printf("monitor server stopped: %v", err)
			}
		}()
		defer close(stop)
	}

	if err := audio.Init(); err != nil {
		return fmt.Errorf("init portaudio: %w", err)
	}
	defer audio.Terminate()

	speaker, err := audio.NewSpeaker(audioParams.SampleRate, audioParams.SamplesPerPacket())
	if err != nil {
		return fmt.Errorf("open speaker: %w", err)
	}
	defer speaker.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nshutting down...")
		audio.Terminate()
		os.Exit(0)
	}()

	frames, err := session.SendFile(data)
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}
	fmt.Printf("encoded %d frame(s); playing ACK-channel packets\n", len(frames))

	for i := range frames {
		ack := session.BuildAckPacket(1<<uint(i%64), uint32(i), 0)
		if err := speaker.Play(ack); err != nil {
			return fmt.Errorf("play frame %d control packet: %w", i, err)
		}
	}

	fmt.Printf("done (%.0f%% success rate)\n", session.SuccessRate()*100)
	return nil
}
