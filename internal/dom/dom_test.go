package dom

import (
	"strings"
	"testing"
)

const page = `<!DOCTYPE html>
<html><body>
<div id="main" class="wrapper">
  <p class="note first">Hello <b>world</b></p>
  <select data-index="option1">
    <option value="Red">Red</option>
    <option value="Blue" selected>Blue</option>
  </select>
  <input type="radio" name="size" value="S">
  <input type="radio" name="size" value="M" checked>
</div>
<div class="rte"><table><tr><td>1</td></tr></table></div>
</body></html>`

func mustParse(t *testing.T, markup string) *Document {
	t.Helper()
	doc, err := ParseString(markup)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return doc
}

func TestFindAndAttributes(t *testing.T) {
	doc := mustParse(t, page)

	main := doc.ElementByID("main")
	if main == nil {
		t.Fatalf("expected #main to be found")
	}
	if !main.HasClass("wrapper") {
		t.Fatalf("expected wrapper class")
	}

	radios := main.Find(AttrEquals("type", "radio"))
	if len(radios) != 2 {
		t.Fatalf("expected 2 radios, got %d", len(radios))
	}
	if radios[0].HasAttr("checked") || !radios[1].HasAttr("checked") {
		t.Fatalf("unexpected checked state")
	}

	main.SetAttr("data-section-id", "abc")
	if got := main.AttrOr("data-section-id", ""); got != "abc" {
		t.Fatalf("expected attribute set, got %q", got)
	}
	main.RemoveAttr("data-section-id")
	if main.HasAttr("data-section-id") {
		t.Fatalf("expected attribute removed")
	}
}

func TestClassManipulation(t *testing.T) {
	doc := mustParse(t, page)
	note := doc.First(Class("note"))

	note.AddClass("hide", "note")
	if got := note.AttrOr("class", ""); got != "note first hide" {
		t.Fatalf("unexpected classes %q", got)
	}
	note.RemoveClass("first")
	if note.HasClass("first") || !note.HasClass("hide") {
		t.Fatalf("expected first removed and hide kept, got %q", note.AttrOr("class", ""))
	}
	if note.ToggleClass("hide") {
		t.Fatalf("expected toggle to remove class")
	}
	if !note.ToggleClass("hide") {
		t.Fatalf("expected toggle to add class")
	}
}

func TestTextAndInnerHTML(t *testing.T) {
	doc := mustParse(t, page)
	note := doc.First(Class("note"))

	if got := note.Text(); got != "Hello world" {
		t.Fatalf("unexpected text %q", got)
	}
	note.SetText("Sold out")
	if got := note.InnerHTML(); got != "Sold out" {
		t.Fatalf("unexpected inner html %q", got)
	}
	if err := note.SetInnerHTML("<em>$10.00</em>"); err != nil {
		t.Fatalf("set inner html: %v", err)
	}
	if got := note.InnerHTML(); got != "<em>$10.00</em>" {
		t.Fatalf("unexpected inner html %q", got)
	}
}

func TestSelectValue(t *testing.T) {
	doc := mustParse(t, page)
	sel := doc.First(Tag("select"))

	if got := sel.Value(); got != "Blue" {
		t.Fatalf("expected Blue selected, got %q", got)
	}
	if !sel.SetValue("Red") {
		t.Fatalf("expected Red to be selectable")
	}
	if got := sel.Value(); got != "Red" {
		t.Fatalf("expected Red selected, got %q", got)
	}
	if sel.SetValue("Green") {
		t.Fatalf("expected unknown option to be rejected")
	}
}

func TestWrapAndWithin(t *testing.T) {
	doc := mustParse(t, page)
	tables := doc.Find(Within(Class("rte"), Tag("table")))
	if len(tables) != 1 {
		t.Fatalf("expected one rte table, got %d", len(tables))
	}

	wrapper := tables[0].Wrap("div", "rte__table-wrapper")
	if wrapper == nil || !wrapper.Contains(tables[0]) {
		t.Fatalf("expected wrapper to contain the table")
	}
	if parent := wrapper.Parent(); parent == nil || !parent.HasClass("rte") {
		t.Fatalf("expected wrapper to sit inside .rte")
	}
	if !strings.Contains(doc.String(), `<div class="rte__table-wrapper"><table>`) {
		t.Fatalf("expected rendered wrapper, got %s", doc.String())
	}
}

func TestFocusTracking(t *testing.T) {
	doc := mustParse(t, page)
	main := doc.ElementByID("main")

	doc.Focus(main)
	if !doc.Focused().Same(main) {
		t.Fatalf("expected #main focused")
	}
	doc.Focus(nil)
	if doc.Focused() != nil {
		t.Fatalf("expected focus cleared")
	}
}

func TestSiblings(t *testing.T) {
	doc := mustParse(t, `<div><button class="minus">-</button><input data-q value="1"><button class="plus">+</button></div>`)
	input := doc.First(HasAttr("data-q"))
	if len(input.Siblings(Class("plus"))) != 1 || len(input.Siblings(nil)) != 2 {
		t.Fatalf("unexpected siblings")
	}
}
