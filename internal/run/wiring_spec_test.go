package run

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"raybands/internal/band"
	"raybands/internal/capture"
	"raybands/internal/session"
	"raybands/internal/store"
)

var _ = ginkgo.Describe("Run", func() {
	ginkgo.It("partitions, captures, exports, records, and restores", func() {
		fake := session.NewFake(
			session.FakeRay{Power: 40, Source: "A", Surface: "S1"},
			session.FakeRay{Power: 30, Source: "A", Surface: "S1"},
			session.FakeRay{Power: 20, Source: "A", Surface: "S2"},
			session.FakeRay{Power: 10, Source: "B", Surface: "S1"},
		)

		dir := ginkgo.GinkgoT().TempDir()
		report, err := Execute(context.Background(), Options{
			ProcessID: 99,
			Connect:   func(int) (session.Handle, error) { return fake, nil },
			Grabber: capture.GrabberFunc(func() (image.Image, error) {
				return image.NewRGBA(image.Rect(0, 0, 2, 2)), nil
			}),
			Source:  "A",
			Surface: "*",
			Intervals: []band.Interval{
				{UpperPercent: 70, LowerPercent: 0},
				{UpperPercent: 100, LowerPercent: 70},
			},
			OutputDir: dir,
			Base:      "wiring",
			Sleep:     func(time.Duration) {},
		})
		gomega.Expect(err).To(gomega.Succeed())

		gomega.Expect(report.Filtered).To(gomega.Equal(3))
		gomega.Expect(report.TotalPower).To(gomega.BeNumerically("~", 90, 1e-9))

		// 70% of 90 = 63: rays 40+30 reach it; ray 20 is the tail band.
		gomega.Expect(report.Bands[0].Members).To(gomega.Equal([]int{1, 2}))
		gomega.Expect(report.Bands[1].Members).To(gomega.Equal([]int{3}))

		for _, b := range report.Bands {
			gomega.Expect(b.Artifacts.CSVPath).To(gomega.BeAnExistingFile())
			gomega.Expect(b.Artifacts.ImagePath).To(gomega.BeAnExistingFile())
		}
		gomega.Expect(report.BundlePath).To(gomega.BeAnExistingFile())

		entries, err := os.ReadDir(dir)
		gomega.Expect(err).To(gomega.Succeed())
		gomega.Expect(len(entries)).To(gomega.Equal(5), "2 CSVs + 2 PNGs + bundle")

		// Restoration is unconditional: everything visible, updates live.
		gomega.Expect(fake.VisibleIndices()).To(gomega.Equal([]int{1, 2, 3, 4}))
		gomega.Expect(fake.AutoUpdate()).To(gomega.BeTrue())

		st, err := store.OpenMemory()
		gomega.Expect(err).To(gomega.Succeed())
		defer st.Close()

		id, err := st.RecordRun(ReportToRun(report))
		gomega.Expect(err).To(gomega.Succeed())

		saved, err := st.GetRun(id)
		gomega.Expect(err).To(gomega.Succeed())
		gomega.Expect(saved.Bands).To(gomega.HaveLen(2))
		gomega.Expect(saved.Bands[0].UpperPercent).To(gomega.Equal(100.0))
		gomega.Expect(filepath.Dir(saved.Bands[0].CSVPath)).To(gomega.Equal(dir))
	})
})
