/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

func TestLayoutWrapsOnSpaces(t *testing.T) {
	box := Layout(BasicProvider{}, FontSpec{Size: 13}, "Hello world from Go", 50)
	if got, want := len(box.Lines), 3; got != want {
		t.Fatalf("got %d lines, want %d", got, want)
	}
	if got, want := box.Lines[2].Text, "from Go"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if got, want := box.Width, 49.0; got != want {
		t.Fatalf("got width %v, want %v", got, want)
	}
}

func TestLayoutKeepsNewlinesAndLongWords(t *testing.T) {
	box := Layout(BasicProvider{}, FontSpec{Size: 13}, "a\nextraordinarily", 20)
	if len(box.Lines) != 2 || box.Lines[1].Text != "extraordinarily" {
		t.Fatalf("got %+v, want two lines", box.Lines)
	}
	if got, want := box.Height, 2*13*LineHeight; got != want {
		t.Fatalf("got height %v, want %v", got, want)
	}
}

func TestMeasureScalesWithSize(t *testing.T) {
	w1, h1 := Measure(BasicProvider{}, FontSpec{Size: 13}, "ABC")
	w2, h2 := Measure(nil, FontSpec{Size: 26}, "ABC")
	if w1 != 21 || w2 != 42 {
		t.Fatalf("got widths %v and %v, want 21 and 42", w1, w2)
	}
	if h2 != 2*h1 {
		t.Fatalf("got heights %v and %v, want double", h1, h2)
	}
}

func TestOTProviderUsesLoadedFamily(t *testing.T) {
	lib := NewFontLibrary()
	if err := lib.Load("Go", 400, false, goregular.TTF); err != nil {
		t.Fatalf("Load error: %v", err)
	}
	p := OTProvider{Lib: lib}
	small, _ := Measure(p, FontSpec{Family: "Go", Size: 12}, "canvas")
	large, _ := Measure(p, FontSpec{Family: "Go", Size: 48}, "canvas")
	if small <= 0 || large <= 3*small {
		t.Fatalf("got %v at 12px and %v at 48px", small, large)
	}
	fallback, _ := Measure(p, FontSpec{Family: "Missing", Size: 13}, "ab")
	if fallback != 14 {
		t.Fatalf("got %v, want bitmap fallback width 14", fallback)
	}
	if err := lib.Load("Broken", 400, false, []byte("nope")); err == nil {
		t.Fatalf("expected parse error")
	}
}
