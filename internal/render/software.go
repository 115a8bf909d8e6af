package render

import (
	"image"
	"math"
	"sort"

	"nvgrid/internal/pool"
	"nvgrid/internal/shaping"
	"nvgrid/internal/style"
)

// SoftwareFactory allocates CPU surfaces backed by image.RGBA.
type SoftwareFactory struct{}

// NewSurface implements SurfaceFactory.
func (SoftwareFactory) NewSurface(width, height int) Surface {
	return NewSoftwareSurface(width, height)
}

// SoftwareSurface is the CPU reference backend: an RGBA image with a canvas
// supporting the clip, layer, and blit operations the renderer needs. It
// exists so the compositor is testable and usable headless; a GPU backend
// plugs in behind the same interfaces.
type SoftwareSurface struct {
	img    *image.RGBA
	canvas *softwareCanvas
}

// NewSoftwareSurface returns a transparent surface of the given size.
func NewSoftwareSurface(width, height int) *SoftwareSurface {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	s := &SoftwareSurface{img: img}
	s.canvas = newSoftwareCanvas(img)
	return s
}

// Canvas implements Surface.
func (s *SoftwareSurface) Canvas() Canvas { return s.canvas }

// Width implements Surface.
func (s *SoftwareSurface) Width() int { return s.img.Rect.Dx() }

// Height implements Surface.
func (s *SoftwareSurface) Height() int { return s.img.Rect.Dy() }

// Release implements Surface; the software backend has nothing to free.
func (s *SoftwareSurface) Release() {}

// Image exposes the backing pixels for screenshots and tests.
func (s *SoftwareSurface) Image() *image.RGBA { return s.img }

type canvasLayer struct {
	img    *image.RGBA
	parent *image.RGBA
	bounds Rect
	alpha  float32
}

type canvasSave struct {
	clip  []float32
	layer *canvasLayer
}

// softwareCanvas draws into an RGBA image through a per-pixel clip coverage
// mask. Pixels are kept premultiplied, matching image.RGBA.
type softwareCanvas struct {
	img    *image.RGBA
	width  int
	height int
	clip   []float32
	saves  []canvasSave
}

func newSoftwareCanvas(img *image.RGBA) *softwareCanvas {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	clip := make([]float32, w*h)
	for i := range clip {
		clip[i] = 1
	}
	return &softwareCanvas{img: img, width: w, height: h, clip: clip}
}

// Save pushes the clip state.
func (c *softwareCanvas) Save() {
	clip := make([]float32, len(c.clip))
	copy(clip, c.clip)
	c.saves = append(c.saves, canvasSave{clip: clip})
}

// SaveLayer redirects drawing into a fresh transparent buffer; the matching
// Restore composites it back over bounds with the given alpha.
func (c *softwareCanvas) SaveLayer(bounds Rect, alpha float32) {
	clip := make([]float32, len(c.clip))
	copy(clip, c.clip)
	layer := &canvasLayer{
		img:    image.NewRGBA(image.Rect(0, 0, c.width, c.height)),
		parent: c.img,
		bounds: bounds,
		alpha:  alpha,
	}
	c.saves = append(c.saves, canvasSave{clip: clip, layer: layer})
	c.img = layer.img
}

// Restore pops the last save, compositing its layer if it had one.
func (c *softwareCanvas) Restore() {
	if len(c.saves) == 0 {
		return
	}
	save := c.saves[len(c.saves)-1]
	c.saves = c.saves[:len(c.saves)-1]

	if layer := save.layer; layer != nil {
		c.img = layer.parent
		x0, y0, x1, y1 := c.pixelBounds(layer.bounds)
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				coverage := c.clip[y*c.width+x] * layer.alpha
				if coverage <= 0 {
					continue
				}
				i := layer.img.PixOffset(x, y)
				p := layer.img.Pix[i : i+4 : i+4]
				if p[3] == 0 && p[0] == 0 && p[1] == 0 && p[2] == 0 {
					continue
				}
				c.compositePremul(x, y,
					float32(p[0])/255*coverage,
					float32(p[1])/255*coverage,
					float32(p[2])/255*coverage,
					float32(p[3])/255*coverage)
			}
		}
	}
	c.clip = save.clip
}

// ClipRect implements Canvas.
func (c *softwareCanvas) ClipRect(r Rect, op ClipOp) {
	c.ClipPath(RectPath(r), op)
}

// ClipPath rasterizes the polygon and combines its coverage into the clip.
func (c *softwareCanvas) ClipPath(p Path, op ClipOp) {
	mask := c.rasterize(p)
	switch op {
	case ClipIntersect:
		for i := range c.clip {
			c.clip[i] *= mask[i]
		}
	case ClipDifference:
		for i := range c.clip {
			c.clip[i] *= 1 - mask[i]
		}
	}
}

// Clear replaces every clipped pixel with the color.
func (c *softwareCanvas) Clear(col style.RGBA) {
	r := uint8(col.R * col.A * 255)
	g := uint8(col.G * col.A * 255)
	b := uint8(col.B * col.A * 255)
	a := uint8(col.A * 255)
	for y := 0; y < c.height; y++ {
		for x := 0; x < c.width; x++ {
			if c.clip[y*c.width+x] <= 0 {
				continue
			}
			i := c.img.PixOffset(x, y)
			p := c.img.Pix[i : i+4 : i+4]
			p[0], p[1], p[2], p[3] = r, g, b, a
		}
	}
}

// FillRect implements Canvas.
func (c *softwareCanvas) FillRect(r Rect, col style.RGBA) {
	x0, y0, x1, y1 := c.pixelBounds(r)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			coverage := c.clip[y*c.width+x]
			if coverage <= 0 {
				continue
			}
			a := col.A * coverage
			c.compositePremul(x, y, col.R*a, col.G*a, col.B*a, a)
		}
	}
}

// BlurBackdrop implements Canvas with a horizontal+vertical box blur.
func (c *softwareCanvas) BlurBackdrop(bounds Rect, sigmaX, sigmaY float32) {
	x0, y0, x1, y1 := c.pixelBounds(bounds)
	if x0 >= x1 || y0 >= y1 {
		return
	}
	rx := int(sigmaX + 0.5)
	ry := int(sigmaY + 0.5)
	if rx <= 0 && ry <= 0 {
		return
	}

	srcBuf := pool.GetByteSlice(len(c.img.Pix))
	defer pool.PutByteSlice(srcBuf)
	src := *srcBuf
	copy(src, c.img.Pix)

	blurAxis := func(horizontal bool, radius int) {
		if radius <= 0 {
			return
		}
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				if c.clip[y*c.width+x] <= 0 {
					continue
				}
				var sum [4]int
				count := 0
				for d := -radius; d <= radius; d++ {
					sx, sy := x, y
					if horizontal {
						sx += d
					} else {
						sy += d
					}
					if sx < x0 || sx >= x1 || sy < y0 || sy >= y1 {
						continue
					}
					i := c.img.PixOffset(sx, sy)
					for k := 0; k < 4; k++ {
						sum[k] += int(src[i+k])
					}
					count++
				}
				if count == 0 {
					continue
				}
				i := c.img.PixOffset(x, y)
				for k := 0; k < 4; k++ {
					c.img.Pix[i+k] = uint8(sum[k] / count)
				}
			}
		}
		copy(src, c.img.Pix)
	}

	blurAxis(true, rx)
	blurAxis(false, ry)
}

// DrawSurface implements Canvas with src-over blending.
func (c *softwareCanvas) DrawSurface(s Surface, left, top float32) {
	src, ok := s.(*SoftwareSurface)
	if !ok {
		return
	}
	w, h := src.Width(), src.Height()
	dx0, dy0, dx1, dy1 := c.pixelBounds(RectXYWH(left, top, float32(w), float32(h)))
	ox := -int(math.Round(float64(left)))
	oy := -int(math.Round(float64(top)))
	for y := dy0; y < dy1; y++ {
		for x := dx0; x < dx1; x++ {
			coverage := c.clip[y*c.width+x]
			if coverage <= 0 {
				continue
			}
			sx, sy := x+ox, y+oy
			if sx < 0 || sy < 0 || sx >= w || sy >= h {
				continue
			}
			si := src.img.PixOffset(sx, sy)
			p := src.img.Pix[si : si+4 : si+4]
			if p[3] == 0 && p[0] == 0 && p[1] == 0 && p[2] == 0 {
				continue
			}
			c.compositePremul(x, y,
				float32(p[0])/255*coverage,
				float32(p[1])/255*coverage,
				float32(p[2])/255*coverage,
				float32(p[3])/255*coverage)
		}
	}
}

// DrawSurfaceRect implements Canvas. The blit replaces destination pixels;
// it is used for scroll shifts where blending would double-composite
// translucent backgrounds.
func (c *softwareCanvas) DrawSurfaceRect(s Surface, srcRect, dstRect Rect) {
	src, ok := s.(*SoftwareSurface)
	if !ok {
		return
	}
	dx0, dy0, dx1, dy1 := c.pixelBounds(dstRect)
	ox := int(math.Round(float64(srcRect.Left - dstRect.Left)))
	oy := int(math.Round(float64(srcRect.Top - dstRect.Top)))
	for y := dy0; y < dy1; y++ {
		for x := dx0; x < dx1; x++ {
			if c.clip[y*c.width+x] <= 0 {
				continue
			}
			sx, sy := x+ox, y+oy
			if sx < 0 || sy < 0 || sx >= src.Width() || sy >= src.Height() {
				continue
			}
			si := src.img.PixOffset(sx, sy)
			di := c.img.PixOffset(x, y)
			copy(c.img.Pix[di:di+4], src.img.Pix[si:si+4])
		}
	}
}

// DrawGlyphRun implements Canvas. The software backend carries no font
// rasterizer; each glyph is painted as a coverage block inset within its
// cells, which is enough for layout screenshots and tests.
func (c *softwareCanvas) DrawGlyphRun(run shaping.GlyphRun, origin Point, cell Dimensions, col style.RGBA) {
	insetX := cell.Width * 0.15
	insetY := cell.Height * 0.15
	for _, glyph := range run.Glyphs {
		if glyph.Text == " " || glyph.Text == "" {
			continue
		}
		left := origin.X + float32(glyph.Column)*cell.Width
		r := Rect{
			Left:   left + insetX,
			Top:    origin.Y + insetY,
			Right:  left + float32(glyph.Columns)*cell.Width - insetX,
			Bottom: origin.Y + cell.Height - insetY,
		}
		c.FillRect(r, col)
	}
}

// DrawShadow implements Canvas: an ambient component under the path and a
// spot component displaced by the directional light, both blurred.
func (c *softwareCanvas) DrawShadow(p Path, settings ShadowSettings) {
	if len(p.Points) == 0 {
		return
	}
	angle := float64(settings.LightAngleDegrees) * math.Pi / 180
	offsetY := settings.ZHeight * float32(math.Tan(angle))

	spot := Path{Points: make([]Point, len(p.Points))}
	for i, pt := range p.Points {
		spot.Points[i] = Point{pt.X, pt.Y + offsetY}
	}

	c.fillPath(p, style.RGBA{A: settings.AmbientAlpha})
	c.fillPath(spot, style.RGBA{A: settings.SpotAlpha})

	blurBounds := p.Bounds().Union(spot.Bounds())
	pad := settings.LightRadius
	blurBounds = Rect{
		Left:   blurBounds.Left - pad,
		Top:    blurBounds.Top - pad,
		Right:  blurBounds.Right + pad,
		Bottom: blurBounds.Bottom + pad,
	}
	sigma := settings.LightRadius / 2
	c.BlurBackdrop(blurBounds, sigma, sigma)
}

func (c *softwareCanvas) fillPath(p Path, col style.RGBA) {
	mask := c.rasterize(p)
	for y := 0; y < c.height; y++ {
		for x := 0; x < c.width; x++ {
			coverage := mask[y*c.width+x] * c.clip[y*c.width+x]
			if coverage <= 0 {
				continue
			}
			a := col.A * coverage
			c.compositePremul(x, y, col.R*a, col.G*a, col.B*a, a)
		}
	}
}

// rasterize scan-fills a closed polygon (even-odd rule at pixel centers)
// into a coverage mask.
func (c *softwareCanvas) rasterize(p Path) []float32 {
	mask := make([]float32, c.width*c.height)
	n := len(p.Points)
	if n < 3 {
		return mask
	}
	for y := 0; y < c.height; y++ {
		cy := float32(y) + 0.5
		var crossings []float32
		for i := 0; i < n; i++ {
			a := p.Points[i]
			b := p.Points[(i+1)%n]
			if (a.Y <= cy) == (b.Y <= cy) {
				continue
			}
			t := (cy - a.Y) / (b.Y - a.Y)
			crossings = append(crossings, a.X+t*(b.X-a.X))
		}
		if len(crossings) < 2 {
			continue
		}
		sort.Slice(crossings, func(i, j int) bool { return crossings[i] < crossings[j] })
		for i := 0; i+1 < len(crossings); i += 2 {
			x0 := int(math.Ceil(float64(crossings[i] - 0.5)))
			x1 := int(math.Ceil(float64(crossings[i+1] - 0.5)))
			if x0 < 0 {
				x0 = 0
			}
			if x1 > c.width {
				x1 = c.width
			}
			for x := x0; x < x1; x++ {
				mask[y*c.width+x] = 1
			}
		}
	}
	return mask
}

// compositePremul blends a premultiplied source pixel over the destination.
func (c *softwareCanvas) compositePremul(x, y int, sr, sg, sb, sa float32) {
	i := c.img.PixOffset(x, y)
	p := c.img.Pix[i : i+4 : i+4]
	inv := 1 - sa
	p[0] = clampByte(sr*255 + float32(p[0])*inv)
	p[1] = clampByte(sg*255 + float32(p[1])*inv)
	p[2] = clampByte(sb*255 + float32(p[2])*inv)
	p[3] = clampByte(sa*255 + float32(p[3])*inv)
}

// pixelBounds clamps a rect to the surface and rounds it to pixels.
func (c *softwareCanvas) pixelBounds(r Rect) (int, int, int, int) {
	x0 := int(math.Round(float64(r.Left)))
	y0 := int(math.Round(float64(r.Top)))
	x1 := int(math.Round(float64(r.Right)))
	y1 := int(math.Round(float64(r.Bottom)))
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > c.width {
		x1 = c.width
	}
	if y1 > c.height {
		y1 = c.height
	}
	return x0, y0, x1, y1
}

func clampByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
