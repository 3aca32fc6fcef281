package certificate

import (
	"os"

	"github.com/gofiber/fiber/v2/log"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
)

// Font sizes used on the certificate.
const (
	fontSizeLarge  = 18
	fontSizeMedium = 14
	fontSizeSmall  = 12
)

// fontCandidates are checked in order for a face that covers the Japanese
// field character set.
var fontCandidates = []string{
	"fonts/NotoSansJP-Regular.otf",
	"fonts/NotoSansJP-Regular.ttf",
	"/usr/share/fonts/truetype/noto-cjk/NotoSansCJK-Regular.ttc",
	"/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc",
	"/usr/share/fonts/truetype/fonts-japanese-gothic.ttf",
}

type faceSet struct {
	large  font.Face
	medium font.Face
	small  font.Face
}

// loadFaces loads the certificate fonts. A missing or unreadable font never
// fails the render; the basic built-in face is used instead, which keeps the
// layout intact even if CJK glyphs degrade.
func loadFaces(fontPath string) *faceSet {
	candidates := fontCandidates
	if fontPath != "" {
		candidates = append([]string{fontPath}, candidates...)
	}

	for _, path := range candidates {
		set, err := loadFacesFrom(path)
		if err == nil {
			return set
		}
	}

	log.Warn("[Certificate] No CJK font found, falling back to basic face")
	basic := basicfont.Face7x13
	return &faceSet{large: basic, medium: basic, small: basic}
}

func loadFacesFrom(path string) (*faceSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	fnt, err := parseFontData(data)
	if err != nil {
		return nil, err
	}

	set := &faceSet{}
	for _, f := range []struct {
		dst  *font.Face
		size float64
	}{
		{&set.large, fontSizeLarge},
		{&set.medium, fontSizeMedium},
		{&set.small, fontSizeSmall},
	} {
		face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
			Size:    f.size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return nil, err
		}
		*f.dst = face
	}
	return set, nil
}

// parseFontData handles both single fonts (otf/ttf) and collections (ttc).
func parseFontData(data []byte) (*opentype.Font, error) {
	if fnt, err := opentype.Parse(data); err == nil {
		return fnt, nil
	}
	coll, err := opentype.ParseCollection(data)
	if err != nil {
		return nil, err
	}
	return coll.Font(0)
}
