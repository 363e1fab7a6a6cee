/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package textlayout measures and wraps entity text. Measurement goes
// through a Provider so hosts can swap the bitmap fallback face for real
// OpenType fonts without changing the layout rules.
package textlayout

import (
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// LineHeight is the line box height as a multiple of the font size.
const LineHeight = 1.16

// FontSpec describes a requested font. Size is in canvas pixels.
type FontSpec struct {
	Family string
	Size   float64
	Weight int // 100..900
	Italic bool
}

// Metrics describe the resolved face. Size is the pixel size the face was
// built for; measurements are scaled from it to the requested size.
type Metrics struct {
	Size, Ascent, Descent, LineGap float64
}

// Provider maps FontSpec to a concrete font.Face.
type Provider interface {
	Resolve(FontSpec) (font.Face, Metrics)
}

// BasicProvider uses x/image/basicfont Face7x13 for deterministic tests.
type BasicProvider struct{}

func (BasicProvider) Resolve(FontSpec) (font.Face, Metrics) {
	f := basicfont.Face7x13
	return f, metricsOf(f)
}

func metricsOf(f font.Face) Metrics {
	m := f.Metrics()
	return Metrics{
		Size:    float64(m.Ascent.Round() + m.Descent.Round()),
		Ascent:  float64(m.Ascent.Round()),
		Descent: float64(m.Descent.Round()),
		LineGap: float64(m.Height.Round() - m.Ascent.Round() - m.Descent.Round()),
	}
}

// Line is a single laid out line.
type Line struct {
	Text  string
	Width float64
}

// Box is text laid out into lines.
type Box struct {
	Lines  []Line
	Width  float64
	Height float64
}

type measurer struct {
	d     *font.Drawer
	scale float64
}

func newMeasurer(p Provider, spec FontSpec) measurer {
	if p == nil {
		p = BasicProvider{}
	}
	face, met := p.Resolve(spec)
	scale := 1.0
	if met.Size > 0 && spec.Size > 0 {
		scale = spec.Size / met.Size
	}
	return measurer{d: &font.Drawer{Face: face}, scale: scale}
}

func (m measurer) width(s string) float64 {
	return float64(m.d.MeasureString(s)) / 64 * m.scale // fixed.Int26_6 to px
}

// Layout breaks text on newlines and, when maxWidth is positive, wraps on
// spaces. A word wider than maxWidth gets a line of its own.
func Layout(p Provider, spec FontSpec, text string, maxWidth float64) Box {
	m := newMeasurer(p, spec)
	var box Box
	push := func(s string) {
		w := m.width(s)
		box.Lines = append(box.Lines, Line{Text: s, Width: w})
		if w > box.Width {
			box.Width = w
		}
	}
	for _, para := range strings.Split(text, "\n") {
		if maxWidth <= 0 {
			push(para)
			continue
		}
		cur := ""
		for _, word := range strings.Split(para, " ") {
			next := word
			if cur != "" {
				next = cur + " " + word
			}
			if cur != "" && m.width(next) > maxWidth {
				push(cur)
				next = word
			}
			cur = next
		}
		push(cur)
	}
	box.Height = float64(len(box.Lines)) * spec.Size * LineHeight
	return box
}

// Measure returns the unwrapped size of text.
func Measure(p Provider, spec FontSpec, text string) (w, h float64) {
	b := Layout(p, spec, text, 0)
	return b.Width, b.Height
}
