// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package layout decides how a source page is rotated, scaled, and placed
// on the fixed target canvas.
//
// Wide pages keep their orientation, fill the display width past the left
// margin, and sit flush with the top of the canvas (their bottom edge at
// canvasHeight - h*scale). Tall pages, squares included, are turned a
// quarter counter clockwise so their long side runs along the display
// width, and are anchored at the canvas origin.
package layout

import (
	"fmt"

	"github.com/pdiddy/slidegrid/pkg/types"
)

// Orientation is the shape class of a source page.
type Orientation int

const (
	Tall Orientation = iota
	Wide
)

func (o Orientation) String() string {
	if o == Wide {
		return "wide"
	}
	return "tall"
}

// Classify returns Wide when width exceeds height and Tall otherwise.
// Non-positive dimensions are not rejected here.
func Classify(width, height float64) Orientation {
	if width > height {
		return Wide
	}
	return Tall
}

// Page is the media box of a source page. The lower-left corner is
// assumed to be the origin.
type Page struct {
	Width  float64
	Height float64
}

// Rotation is the counter clockwise turn applied to a page, in degrees.
type Rotation int

const (
	RotateNone    Rotation = 0
	RotateQuarter Rotation = 90
)

// Rect is an axis-aligned rectangle in canvas coordinates.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

func (r Rect) String() string {
	return fmt.Sprintf("[%.2f %.2f %.2f %.2f]", r.X, r.Y, r.Width, r.Height)
}

// Placement is the transform of one source page: rotate about the page
// origin, scale uniformly, then translate by (X, Y).
type Placement struct {
	Rotation Rotation
	Scale    float64
	X, Y     float64
}

// Place computes the Placement of page on canvas.
func Place(page Page, canvas types.CanvasConfig) Placement {
	if Classify(page.Width, page.Height) == Wide {
		scale := canvas.DisplayWidth / page.Width
		return Placement{
			Rotation: RotateNone,
			Scale:    scale,
			X:        canvas.Width - canvas.DisplayWidth,
			Y:        canvas.Height - page.Height*scale,
		}
	}
	return Placement{
		Rotation: RotateQuarter,
		Scale:    canvas.DisplayWidth / page.Height,
		X:        canvas.Width,
		Y:        0,
	}
}

// Matrix returns the transform as a PDF cm operand [a b c d e f].
func (p Placement) Matrix() [6]float64 {
	s := p.Scale
	if p.Rotation == RotateQuarter {
		return [6]float64{0, s, -s, 0, p.X, p.Y}
	}
	return [6]float64{s, 0, 0, s, p.X, p.Y}
}

// Scaled returns the page dimensions multiplied by the scale factor,
// before any rotation.
func (p Placement) Scaled(page Page) (width, height float64) {
	return page.Width * p.Scale, page.Height * p.Scale
}

// Bounds returns the rectangle the transformed page covers on the canvas.
func (p Placement) Bounds(page Page) Rect {
	m := p.Matrix()
	corners := [4][2]float64{{0, 0}, {page.Width, 0}, {0, page.Height}, {page.Width, page.Height}}

	minX, minY := m[4], m[5]
	maxX, maxY := minX, minY
	for _, c := range corners {
		x := m[0]*c[0] + m[2]*c[1] + m[4]
		y := m[1]*c[0] + m[3]*c[1] + m[5]
		minX, maxX = min(minX, x), max(maxX, x)
		minY, maxY = min(minY, y), max(maxY, y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
