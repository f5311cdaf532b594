package main

import (
	"fmt"
	"image"
	"image/color"

	"raybands/internal/capture"
	"raybands/internal/session"
)

// sessionWiring resolves the connector and clipboard grabber for a command.
// The live transport is platform glue injected at the session boundary; this
// build ships the in-memory mock only, selected with --mock.
func sessionWiring(mock bool) (session.Connector, capture.Grabber, error) {
	if !mock {
		return nil, nil, fmt.Errorf("no live session transport is linked into this build; run with --mock")
	}
	return mockConnector, capture.GrabberFunc(mockGrab), nil
}

// mockConnector ignores the process ID and returns a fresh deterministic
// session: three sources across two detector surfaces, powers chosen so the
// usual 100-70-30-0 cuts land on distinct bands.
func mockConnector(int) (session.Handle, error) {
	fake := session.NewFake(
		session.FakeRay{Power: 40, Source: "LaserA", Surface: "Detector1"},
		session.FakeRay{Power: 25, Source: "LaserA", Surface: "Detector1"},
		session.FakeRay{Power: 12, Source: "LaserB", Surface: "Detector1"},
		session.FakeRay{Power: 9, Source: "LaserB", Surface: "Detector2"},
		session.FakeRay{Power: 6, Source: "LaserA", Surface: "Detector2"},
		session.FakeRay{Power: 4, Source: "Ambient", Surface: "Detector2"},
		session.FakeRay{Power: 2.5, Source: "Ambient", Surface: "Detector1"},
		session.FakeRay{Power: 1.5, Source: "Ambient", Surface: "Detector2"},
	)
	fake.Props = map[string]session.Value{
		"Sources.LaserA.AvailableFunctions": session.String(
			"Available functions for this data key\n" +
				"Power RW double\n" +
				"Wavelength RO double\n" +
				"Apodization_Mesh RO double (ij)\n"),
		"Sources.LaserA.Power":            session.Number(1.5),
		"Sources.LaserA.Wavelength":       session.Number(532e-9),
		"Sources.LaserA.Apodization_Mesh": session.Array([]float64{0.2, 0.5, 0.9, 0.5, 0.2}),
	}
	return fake, nil
}

// mockGrab synthesizes a small gradient frame standing in for the rendered
// view on the platform clipboard.
func mockGrab() (image.Image, error) {
	img := image.NewRGBA(image.Rect(0, 0, 320, 240))
	for y := 0; y < 240; y++ {
		for x := 0; x < 320; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y), B: 96, A: 255})
		}
	}
	return img, nil
}
