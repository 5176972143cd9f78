package images

import (
	"image"

	"github.com/corona10/goimagehash"
)

// dedupThreshold is the maximum Hamming distance between two dHash values
// below which images are considered perceptually identical.
const dedupThreshold = 10

// Duplicate pairs an output image with the earlier output it resembles
type Duplicate struct {
	NewID string `yaml:"new_id"`
	Of    string `yaml:"of"`
}

type hashedImage struct {
	id   string
	hash *goimagehash.ImageHash
}

// dedupFilter remembers the difference hash of every image seen in a batch
type dedupFilter struct {
	seen []hashedImage
}

// check returns the identifier of an earlier perceptually identical image.
// Images that cannot be hashed are never reported as duplicates.
func (d *dedupFilter) check(id string, img image.Image) (string, bool) {
	hash, err := goimagehash.DifferenceHash(img)
	if err != nil {
		return "", false
	}

	for _, h := range d.seen {
		dist, err := hash.Distance(h.hash)
		if err == nil && dist < dedupThreshold {
			return h.id, true
		}
	}

	d.seen = append(d.seen, hashedImage{id: id, hash: hash})
	return "", false
}
