package certificate

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"time"

	"github.com/disintegration/imaging"

	"github.com/wanpass/wanpass/internal/pkg/apperrors"
)

// Canvas dimensions used when no template image is configured.
const (
	canvasWidth  = 680
	canvasHeight = 430
)

// Photo frame placement on the certificate.
const (
	frameWidth  = 185
	frameHeight = 190
	frameX      = 480
	frameY      = 90
)

// validityYears is how long a certificate is displayed as valid, and also
// how far back the synthesized display birth date is set.
const validityYears = 3

var (
	textColor   = color.RGBA{0, 0, 0, 255}
	validColor  = color.RGBA{0, 128, 0, 255}
	accentColor = color.RGBA{100, 180, 100, 255}
	validBg     = color.RGBA{230, 255, 230, 255}
	white       = color.RGBA{255, 255, 255, 255}
)

// Fields is the text content placed on a certificate.
type Fields struct {
	OwnerName     string
	PetName       string
	IssueLocation string
	IssueDate     time.Time
	AnimalType    string
	Gender        string
	Color         string
	FavoriteWord  string
	MicrochipNo   string
}

// Generator composites certificate images from a template, text fields and a
// cropped pet photo. Safe for concurrent use; each call works on its own
// canvas.
type Generator struct {
	// TemplatePath points at an optional on-disk template PNG. When the file
	// is absent a blank canvas is used instead.
	TemplatePath string
	// FontPath optionally overrides the font search list.
	FontPath string
}

// NewGenerator creates a certificate generator.
func NewGenerator(templatePath, fontPath string) *Generator {
	return &Generator{TemplatePath: templatePath, FontPath: fontPath}
}

// Generate renders the certificate and returns it as PNG bytes. Undecodable
// photo bytes are fatal; there is no partial-certificate output.
func (g *Generator) Generate(photo []byte, f Fields) ([]byte, error) {
	pet, err := imaging.Decode(bytes.NewReader(photo))
	if err != nil {
		return nil, fmt.Errorf("%w: could not decode pet photo: %v", apperrors.ErrRender, err)
	}

	canvas := g.loadTemplate()
	drawChrome(canvas)

	faces := loadFaces(g.FontPath)
	drawFields(canvas, faces, f)

	// Photo goes in last so it sits on top of the frame border
	cropped := cropForFrame(pet, frameWidth, frameHeight)
	draw.Draw(canvas, image.Rect(frameX, frameY, frameX+frameWidth, frameY+frameHeight),
		cropped, image.Point{}, draw.Src)

	var out bytes.Buffer
	if err := imaging.Encode(&out, canvas, imaging.PNG); err != nil {
		return nil, fmt.Errorf("%w: could not encode certificate: %v", apperrors.ErrRender, err)
	}
	return out.Bytes(), nil
}

// loadTemplate reads the configured template or falls back to a blank
// canvas of the fixed certificate size.
func (g *Generator) loadTemplate() *image.NRGBA {
	if g.TemplatePath != "" {
		if _, err := os.Stat(g.TemplatePath); err == nil {
			if tmpl, err := imaging.Open(g.TemplatePath); err == nil {
				return imaging.Clone(tmpl)
			}
		}
	}
	return imaging.New(canvasWidth, canvasHeight, white)
}

// drawChrome draws the borders, rules and boxes of the certificate layout.
func drawChrome(dst draw.Image) {
	w := dst.Bounds().Dx()
	h := dst.Bounds().Dy()

	strokeRect(dst, image.Rect(10, 10, w-10, h-10), 4, textColor)
	strokeRect(dst, image.Rect(20, 20, w-20, h-20), 2, textColor)

	// field rules
	hline(dst, 90, 560, 50, 2, textColor)  // owner name
	hline(dst, 90, 660, 85, 2, textColor)  // issue location
	hline(dst, 90, 360, 115, 2, textColor) // issue date

	// validity highlight
	fillRect(dst, image.Rect(20, 125, 360, 150), validBg)

	// pet detail rules
	hline(dst, 90, 280, 170, 1, textColor)
	hline(dst, 90, 280, 190, 1, textColor)
	hline(dst, 90, 280, 210, 1, textColor)
	hline(dst, 90, 280, 230, 1, textColor)

	// free-text boxes
	strokeRect(dst, image.Rect(20, 250, 470, 290), 2, textColor)
	strokeRect(dst, image.Rect(20, 300, 470, 340), 2, textColor)

	// photo frame
	strokeRect(dst, image.Rect(475, 85, 665, 280), 2, textColor)
}

// drawFields places all text at its fixed anchors.
func drawFields(dst draw.Image, faces *faceSet, f Fields) {
	// Display dates derived from the issue date; never persisted.
	birthDate := addYears(f.IssueDate, -validityYears)
	validUntil := addYears(f.IssueDate, validityYears)

	// labels
	drawText(dst, 30, 30, "氏名", faces.small, textColor)
	drawText(dst, 30, 65, "交付場所", faces.small, textColor)
	drawText(dst, 30, 95, "交付", faces.small, textColor)

	drawText(dst, 100, 28, f.OwnerName, faces.medium, textColor)
	drawText(dst, 480, 28, birthDate.Format("2006年01月02日")+" 生", faces.small, textColor)
	drawText(dst, 100, 63, f.IssueLocation, faces.small, textColor)
	drawText(dst, 100, 93, f.IssueDate.Format("2006年 01月 02日"), faces.small, textColor)
	drawText(dst, 30, 130, validUntil.Format("2006年01月02日")+" まで有効", faces.medium, validColor)

	// pet detail labels
	drawText(dst, 30, 155, "性別　：", faces.small, textColor)
	drawText(dst, 30, 175, "種類　：", faces.small, textColor)
	drawText(dst, 30, 195, "毛色　：", faces.small, textColor)
	drawText(dst, 30, 215, "名称　：", faces.small, textColor)

	drawText(dst, 100, 155, f.Gender, faces.small, textColor)
	animal := f.AnimalType
	if animal == "" {
		animal = "不明"
	}
	drawText(dst, 100, 175, animal, faces.small, textColor)
	if f.Color != "" {
		drawText(dst, 100, 195, f.Color, faces.small, textColor)
	}
	drawText(dst, 100, 215, f.PetName, faces.small, textColor)

	drawText(dst, 30, 255, "お好きな一言", faces.small, textColor)
	if f.FavoriteWord != "" {
		drawText(dst, 140, 265, f.FavoriteWord, faces.small, textColor)
	}

	drawText(dst, 30, 305, "マイクロチップNo.", faces.small, textColor)
	if f.MicrochipNo != "" {
		drawText(dst, 30, 320, f.MicrochipNo, faces.small, textColor)
	}

	// vertical title along the right edge
	for i, r := range []rune("ペット免許証") {
		drawText(dst, 650, 150+i*20, string(r), faces.medium, accentColor)
	}
}

// addYears shifts a date by whole years, keeping month and day. Feb 29
// normalizes to Mar 1 in non-leap years.
func addYears(t time.Time, years int) time.Time {
	return time.Date(t.Year()+years, t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
