package main

import (
	"image/color"
	"log/slog"
	"machine"
	"time"

	"tinygo.org/x/drivers/waveshare-epd/epd2in9"
	"tinygo.org/x/tinydraw"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freemono"
)

// The epd2in9 buffer treats any non-zero colour as black.
var black = color.RGBA{R: 1, G: 1, B: 1, A: 255}

var font = &freemono.Regular9pt7b

func main() {
	logger := slog.New(slog.NewTextHandler(machine.Serial, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	err := machine.SPI0.Configure(machine.SPIConfig{
		Frequency: 8 * machine.MHz,
		SCK:       machine.GP18,
		SDO:       machine.GP19,
		Mode:      0,
	})
	if err != nil {
		printErrForever(logger, "configure SPI", slog.String("reason", err.Error()))
	}

	logger.Info("initializing display")
	display := epd2in9.New(machine.SPI0,
		machine.GP17, // CS
		machine.GP20, // DC
		machine.GP21, // RST
		machine.GP22, // BUSY
	)
	display.Configure(epd2in9.Config{})
	display.ClearBuffer()
	display.ClearDisplay()

	logger.Info("begin text output and rotation demo")
	for _, r := range []struct {
		text     string
		rotation epd2in9.Rotation
	}{
		{"Rotate 0!", epd2in9.NO_ROTATION},
		{"Rotate 90!", epd2in9.ROTATION_90},
		{"Rotate 180!", epd2in9.ROTATION_180},
		{"Rotate 270!", epd2in9.ROTATION_270},
	} {
		display.SetRotation(r.rotation)
		tinyfont.WriteLine(&display, font, 5, 50, r.text, black)
	}
	show(logger, &display)
	time.Sleep(time.Second)
	display.SetRotation(epd2in9.NO_ROTATION)

	logger.Info("begin clock graphics demo")
	display.ClearBuffer()
	tinydraw.Circle(&display, 64, 64, 40, black)
	// Thick hour hand, thin minute hand.
	for dx := int16(-2); dx <= 1; dx++ {
		tinydraw.Line(&display, 64+dx, 64, 30+dx, 40, black)
	}
	tinydraw.Line(&display, 64, 64, 80, 40, black)
	show(logger, &display)
	time.Sleep(time.Second)

	logger.Info("begin partial quick refresh demo - moving message")
	display.SetLUT(false)
	for i := int16(0); i < 10; i++ {
		display.ClearBuffer()
		tinyfont.WriteLine(&display, font, 5+i*12, 50, "Hello World!", black)
		show(logger, &display)
	}
	time.Sleep(time.Second)

	logger.Info("begin spinner demo")
	spinner := [...]string{"|", "/", "-", "\\"}
	for i := 0; i < 10; i++ {
		display.ClearBuffer()
		tinyfont.WriteLine(&display, font, 10, 100, spinner[i%len(spinner)], black)
		show(logger, &display)
	}
	time.Sleep(time.Second)

	logger.Info("complete")
	display.SetLUT(true)
	display.ClearBuffer()
	tinyfont.WriteLine(&display, font, 20, 150, "COMPLETE", black)
	show(logger, &display)
	display.DeepSleep()

	for {
		time.Sleep(time.Second)
	}
}

// show pushes the buffer to the panel and waits for the refresh to finish.
func show(logger *slog.Logger, display *epd2in9.Device) {
	if err := display.Display(); err != nil {
		logger.Error("display refresh", slog.String("reason", err.Error()))
		return
	}
	display.WaitUntilIdle()
}

// printErrForever logs msg @ 1hz. It blocks forever.
func printErrForever(logger *slog.Logger, msg string, args ...any) {
	for {
		logger.Error(msg, args...)
		time.Sleep(time.Second)
	}
}
