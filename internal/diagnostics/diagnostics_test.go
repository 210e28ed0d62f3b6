package diagnostics_test

import (
	"strings"
	"testing"

	"github.com/autobrr/xvfs/internal/diagnostics"
	"github.com/autobrr/xvfs/internal/imagetest"
	"github.com/autobrr/xvfs/internal/volume"
	"github.com/autobrr/xvfs/internal/xdvdfs"
)

func TestReport_ContainsVolumeFacts(t *testing.T) {
	img := imagetest.New()
	fileSector := img.AllocSector()
	img.PutFile(fileSector, []byte("ABCD"))
	rootDirSector := img.AllocSector()
	img.PutSector(rootDirSector, imagetest.DirectorySector(&imagetest.Node{
		Name: "default.xbe", StartSector: fileSector, Size: 4,
	}))
	img.WriteVolumeDescriptor(rootDirSector, xdvdfs.SectorSize, 0)
	path := imagetest.Build(t, img)

	vol, err := volume.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer vol.Close()

	report := diagnostics.Report(vol)
	if !strings.Contains(report, "volume label:   image\n") {
		t.Fatalf("report missing label: %q", report)
	}
	if !strings.Contains(report, "entries:        2") {
		t.Fatalf("report missing entry count: %q", report)
	}
	if !strings.Contains(report, "image size:     ") {
		t.Fatalf("report missing image size: %q", report)
	}
}
