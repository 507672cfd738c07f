package pipeline

import (
	"image"

	"github.com/ironsheep/wallpaper-align/internal/imaging"
	"github.com/ironsheep/wallpaper-align/internal/logging"
)

// outputs collects images to be written at the end of a stage.
type outputs []output

type output struct {
	path string
	img  image.Image
}

func (o *outputs) add(path string, img image.Image) {
	*o = append(*o, output{path: path, img: img})
}

// flush saves every collected image in insertion order, stopping at the first
// failure.
func (o outputs) flush() error {
	for _, out := range o {
		if err := imaging.Save(out.img, out.path); err != nil {
			return err
		}
		logging.Printf("wrote %s", out.path)
	}
	return nil
}

// Paths returns the destination paths in write order.
func (o outputs) Paths() []string {
	paths := make([]string, len(o))
	for i, out := range o {
		paths[i] = out.path
	}
	return paths
}
