package codegen

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"main/internal/element"
)

func testProject() Project {
	return Project{Name: "My Landing Page", CanvasWidth: 1200, CanvasHeight: 800, CanvasBackground: "#fafafa"}
}

func el(id, kind, name, content, parent string) *element.Element {
	return &element.Element{
		ID:       id,
		Type:     kind,
		Name:     name,
		Content:  content,
		ParentID: parent,
		Position: element.Position{X: 100, Y: 100},
		Size:     element.Size{Width: 200, Height: 50},
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	build := func() []*element.Element {
		hero := el("e1", "hero", "Hero", "Welcome", "")
		hero.Styles = map[string]any{
			"backgroundColor": "#222",
			"color":           "#fff",
			"fontSize":        "24px",
			"padding":         "2rem",
		}
		return []*element.Element{
			hero,
			el("e2", "button", "Sign Up", "Sign up", ""),
			el("e3", "input", "Email", "you@example.com", ""),
		}
	}

	first := Generate(testProject(), build())
	second := Generate(testProject(), build())
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated export differs (-first +second):\n%s", diff)
	}
}

func TestCollidingNamesGetNumericSuffix(t *testing.T) {
	bundle := Generate(testProject(), []*element.Element{
		el("e1", "text", "Header", "one", ""),
		el("e2", "text", "header", "two", ""),
	})
	if !strings.Contains(bundle.CSS, ".header {") {
		t.Errorf("first element should keep the bare identifier:\n%s", bundle.CSS)
	}
	if !strings.Contains(bundle.CSS, ".header2 {") {
		t.Errorf("second colliding element should get the 2 suffix:\n%s", bundle.CSS)
	}
}

func TestIdenticalNamesShareIdentifier(t *testing.T) {
	bundle := Generate(testProject(), []*element.Element{
		el("e1", "text", "Tagline", "a", ""),
		el("e2", "text", "Tagline", "b", ""),
	})
	if strings.Contains(bundle.HTML, "tagline2") {
		t.Errorf("elements with the same name should share one identifier:\n%s", bundle.HTML)
	}
	if got := strings.Count(bundle.HTML, `class="tagline"`); got != 2 {
		t.Errorf("expected both elements to use class tagline, got %d uses", got)
	}
}

func TestBlankNameFallsBack(t *testing.T) {
	bundle := Generate(testProject(), []*element.Element{
		el("e1", "text", "!!!", "x", ""),
	})
	if !strings.Contains(bundle.HTML, `class="element"`) {
		t.Errorf("unusable name should fall back to the default identifier:\n%s", bundle.HTML)
	}
}

func TestFormControls(t *testing.T) {
	bundle := Generate(testProject(), []*element.Element{
		el("e1", "input", "Email", "you@example.com", ""),
		el("e2", "checkbox", "Agree", "I agree", ""),
		el("e3", "radio", "Plan A", "Monthly", ""),
		el("e4", "radio", "Plan B", "Yearly", ""),
	})

	if !strings.Contains(bundle.TS, "email: new FormControl('')") {
		t.Errorf("input should bind a text control:\n%s", bundle.TS)
	}
	if !strings.Contains(bundle.TS, "agree: new FormControl(false)") {
		t.Errorf("checkbox should bind a boolean control:\n%s", bundle.TS)
	}
	if !strings.Contains(bundle.TS, "radioGroup: new FormControl('')") {
		t.Errorf("radios should share one group control:\n%s", bundle.TS)
	}
	if strings.Contains(bundle.TS, "plan_a:") || strings.Contains(bundle.TS, "plan_b:") {
		t.Errorf("individual radios must not get their own controls:\n%s", bundle.TS)
	}
	if !strings.Contains(bundle.HTML, `[formControl]="formControls.radioGroup"`) {
		t.Errorf("radio inputs should bind the shared group control:\n%s", bundle.HTML)
	}
	if !strings.Contains(bundle.HTML, `name="radioGroup"`) {
		t.Errorf("radio inputs should share a name attribute:\n%s", bundle.HTML)
	}
}

func TestImageRendersSelfClosing(t *testing.T) {
	img := el("e1", "image", "Logo", "assets/logo.png", "")
	bundle := Generate(testProject(), []*element.Element{img})

	if !strings.Contains(bundle.HTML, `<img class="logo" src="assets/logo.png" alt="Logo">`) {
		t.Errorf("image markup wrong:\n%s", bundle.HTML)
	}
	if strings.Contains(bundle.HTML, "</img>") {
		t.Errorf("img must not get a closing tag:\n%s", bundle.HTML)
	}
}

func TestButtonWiresClickHandler(t *testing.T) {
	bundle := Generate(testProject(), []*element.Element{
		el("e1", "button", "Buy Now", "Buy", ""),
	})
	if !strings.Contains(bundle.HTML, `(click)="onButtonClick('buy_now')"`) {
		t.Errorf("button should wire the click handler:\n%s", bundle.HTML)
	}
	if !strings.Contains(bundle.TS, "onButtonClick(id: string)") {
		t.Errorf("component should declare the click handler:\n%s", bundle.TS)
	}
}

func TestStylesSkipEmptyAndTransparent(t *testing.T) {
	txt := el("e1", "text", "Note", "hello", "")
	txt.Styles = map[string]any{
		"backgroundColor": "none",
		"borderStyle":     "",
		"outline":         "transparent",
		"color":           "#333",
		"fontSize":        "18px",
	}
	bundle := Generate(testProject(), []*element.Element{txt})

	if strings.Contains(bundle.CSS, "background-color: none") {
		t.Errorf("none values should be skipped:\n%s", bundle.CSS)
	}
	if strings.Contains(bundle.CSS, "outline") {
		t.Errorf("transparent values should be skipped:\n%s", bundle.CSS)
	}
	if !strings.Contains(bundle.CSS, "color: #333;") {
		t.Errorf("real values should be emitted:\n%s", bundle.CSS)
	}
	if !strings.Contains(bundle.CSS, "font-size: 18px;") {
		t.Errorf("camelCase keys should convert to kebab-case:\n%s", bundle.CSS)
	}
}

func TestFallbackStylesYieldToCustomValues(t *testing.T) {
	btn := el("e1", "button", "Go", "Go", "")
	btn.Styles = map[string]any{"display": "inline-block"}
	bundle := Generate(testProject(), []*element.Element{btn})

	if !strings.Contains(bundle.CSS, "display: inline-block;") {
		t.Errorf("custom display should be kept:\n%s", bundle.CSS)
	}
	if strings.Contains(bundle.CSS, "display: flex;") {
		t.Errorf("fallback display must not be emitted when the element sets its own:\n%s", bundle.CSS)
	}
	if !strings.Contains(bundle.CSS, "cursor: pointer;") {
		t.Errorf("unconditional button rules still apply:\n%s", bundle.CSS)
	}
}

func TestChildrenNestInsideParentMarkup(t *testing.T) {
	bundle := Generate(testProject(), []*element.Element{
		el("e1", "container", "Wrapper", "never shown", ""),
		el("e2", "text", "Inner", "hello", "e1"),
	})

	wrapperIdx := strings.Index(bundle.HTML, `class="container wrapper"`)
	innerIdx := strings.Index(bundle.HTML, `class="inner"`)
	closeIdx := strings.Index(bundle.HTML, "</div>")
	if wrapperIdx < 0 || innerIdx < 0 {
		t.Fatalf("expected wrapper and child markup:\n%s", bundle.HTML)
	}
	if !(wrapperIdx < innerIdx && innerIdx < closeIdx) {
		t.Errorf("child should render inside the parent's tags:\n%s", bundle.HTML)
	}
	if strings.Contains(bundle.HTML, "never shown") {
		t.Errorf("container with children should not render its text content:\n%s", bundle.HTML)
	}
}

func TestCanvasGeometryInStylesheet(t *testing.T) {
	pos := el("e1", "text", "Note", "x", "")
	pos.Position = element.Position{X: 40, Y: 60}
	pos.Size = element.Size{Width: 120, Height: 30}
	bundle := Generate(testProject(), []*element.Element{pos})

	for _, want := range []string{
		"width: 1200px", "height: 800px", "background-color: #fafafa",
		"left: 40px;", "top: 60px;", "width: 120px;", "height: 30px;",
		"position: absolute;",
	} {
		if !strings.Contains(bundle.CSS, want) {
			t.Errorf("stylesheet missing %q:\n%s", want, bundle.CSS)
		}
	}
	if !strings.Contains(bundle.CSS, "@media (max-width: 768px)") {
		t.Errorf("stylesheet should include the responsive scale block:\n%s", bundle.CSS)
	}
}

func TestResizeHookAdjustsHostHeight(t *testing.T) {
	bundle := Generate(testProject(), []*element.Element{
		el("e1", "text", "Note", "x", ""),
	})

	for _, want := range []string{
		"this.host.nativeElement.style.setProperty('--responsive-scale', String(scale));",
		"this.host.nativeElement.style.height = (800 * scale) + 'px';",
		"this.host.nativeElement.style.height = '800px';",
	} {
		if !strings.Contains(bundle.TS, want) {
			t.Errorf("resize hook missing %q:\n%s", want, bundle.TS)
		}
	}
}

func TestSharedIdentifierEmitsOneMediaBlock(t *testing.T) {
	bundle := Generate(testProject(), []*element.Element{
		el("e1", "text", "Tagline", "a", ""),
		el("e2", "text", "Tagline", "b", ""),
	})

	if got := strings.Count(bundle.CSS, "@media (max-width: 768px)"); got != 1 {
		t.Errorf("elements sharing an identifier should emit one responsive block, got %d:\n%s", got, bundle.CSS)
	}
}

func TestComponentNaming(t *testing.T) {
	bundle := Generate(testProject(), nil)
	if bundle.ComponentName != "my-landing-page" {
		t.Errorf("ComponentName = %q, want my-landing-page", bundle.ComponentName)
	}
	if !strings.Contains(bundle.TS, "export class MyLandingPageComponent") {
		t.Errorf("class name wrong:\n%s", bundle.TS)
	}
	if !strings.Contains(bundle.Module, "export class MyLandingPageModule {}") {
		t.Errorf("module wrapper wrong:\n%s", bundle.Module)
	}
}

func TestEmptyProjectNameFallsBack(t *testing.T) {
	bundle := Generate(Project{Name: "   "}, nil)
	if bundle.ComponentName != "design" {
		t.Errorf("ComponentName = %q, want design", bundle.ComponentName)
	}
}
