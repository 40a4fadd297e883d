package codegen

import (
	"fmt"
	"strings"
)

// decl is one CSS declaration emitted unconditionally for a widget kind.
type decl struct {
	prop  string
	value string
}

// fallback is a CSS declaration emitted only when the element did not set
// the corresponding style key itself.
type fallback struct {
	styleKey string
	prop     string
	value    string
}

type attrFunc func(g *generator, id, name, content string) string
type innerFunc func(g *generator, b *strings.Builder, id, content, indent string)

// descriptor maps one widget kind to everything the emitters need: host tag,
// extra attributes, leaf content template, and default style rules. The
// table replaces per-type branching in the markup and style paths.
type descriptor struct {
	tag         string
	void        bool   // self-rendering tag, no closing element
	classPrefix string // role classes placed before the generated class
	formControl bool   // contributes a bound control to the component
	attrs       attrFunc
	inner       innerFunc
	innerInline bool // inner content stays on the opening tag's line
	alwaysCSS   []decl
	fallbackCSS []fallback
	extraCSS    func(b *strings.Builder, class string)
}

var defaultDescriptor = descriptor{
	tag:         "div",
	classPrefix: "container",
	alwaysCSS:   []decl{{"overflow", "visible"}},
}

var descriptors = map[string]descriptor{
	"container": defaultDescriptor,

	"text": {
		tag:       "p",
		alwaysCSS: []decl{{"overflow", "hidden"}},
		fallbackCSS: []fallback{
			{"textAlign", "text-align", "center"},
			{"display", "display", "flex"},
			{"alignItems", "align-items", "center"},
			{"justifyContent", "justify-content", "center"},
		},
	},

	"button": {
		tag: "button",
		attrs: func(g *generator, id, name, content string) string {
			return fmt.Sprintf(` (click)="onButtonClick('%s')"`, id)
		},
		alwaysCSS: []decl{{"cursor", "pointer"}, {"border", "none"}},
		fallbackCSS: []fallback{
			{"display", "display", "flex"},
			{"alignItems", "align-items", "center"},
			{"justifyContent", "justify-content", "center"},
		},
	},

	"image": {
		tag:  "img",
		void: true,
		attrs: func(g *generator, id, name, content string) string {
			src := content
			if src == "" {
				src = "assets/placeholder.jpg"
			}
			return fmt.Sprintf(` src="%s" alt="%s"`, src, name)
		},
		alwaysCSS: []decl{{"object-fit", "contain"}, {"max-width", "100%"}},
	},

	"input": {
		tag:         "input",
		void:        true,
		formControl: true,
		attrs: func(g *generator, id, name, content string) string {
			return fmt.Sprintf(` type="text" placeholder="%s" [formControl]="formControls.%s"`, content, id)
		},
		alwaysCSS: []decl{{"padding", "8px"}, {"box-sizing", "border-box"}},
		fallbackCSS: []fallback{
			{"borderWidth", "border", "1px solid #ddd"},
			{"borderRadius", "border-radius", "4px"},
		},
	},

	"textarea": {
		tag:         "textarea",
		formControl: true,
		attrs: func(g *generator, id, name, content string) string {
			return fmt.Sprintf(` placeholder="%s" [formControl]="formControls.%s"`, content, id)
		},
		alwaysCSS: []decl{{"padding", "8px"}, {"box-sizing", "border-box"}},
		fallbackCSS: []fallback{
			{"borderWidth", "border", "1px solid #ddd"},
			{"borderRadius", "border-radius", "4px"},
		},
	},

	"checkbox": {
		tag:         "div",
		classPrefix: "form-check",
		formControl: true,
		inner: func(g *generator, b *strings.Builder, id, content, indent string) {
			label := content
			if label == "" {
				label = "Option"
			}
			fmt.Fprintf(b, "\n%s  <input type=\"checkbox\" class=\"form-check-input\" id=\"%s\" [formControl]=\"formControls.%s\">", indent, id, id)
			fmt.Fprintf(b, "\n%s  <label class=\"form-check-label\" for=\"%s\">%s</label>", indent, id, label)
		},
		alwaysCSS: []decl{{"display", "flex"}, {"align-items", "center"}},
	},

	"radio": {
		tag:         "div",
		classPrefix: "form-check",
		formControl: true,
		inner: func(g *generator, b *strings.Builder, id, content, indent string) {
			label := content
			if label == "" {
				label = "Option"
			}
			fmt.Fprintf(b, "\n%s  <input type=\"radio\" class=\"form-check-input\" id=\"%s\" name=\"radioGroup\" value=\"%s\" [formControl]=\"formControls.radioGroup\">", indent, id, id)
			fmt.Fprintf(b, "\n%s  <label class=\"form-check-label\" for=\"%s\">%s</label>", indent, id, label)
		},
		alwaysCSS: []decl{{"display", "flex"}, {"align-items", "center"}},
	},

	"select": {
		tag:         "select",
		classPrefix: "form-select",
		formControl: true,
		attrs: func(g *generator, id, name, content string) string {
			return fmt.Sprintf(` [formControl]="formControls.%s"`, id)
		},
		inner: func(g *generator, b *strings.Builder, id, content, indent string) {
			fmt.Fprintf(b, "\n%s  <option value=\"\">Choose an option</option>", indent)
			for i := 1; i <= 3; i++ {
				fmt.Fprintf(b, "\n%s  <option value=\"option%d\">Option %d</option>", indent, i, i)
			}
		},
	},

	"icon": defaultDescriptor,

	"navbar": {
		tag:         "nav",
		classPrefix: "navbar navbar-expand-lg navbar-light",
		inner: func(g *generator, b *strings.Builder, id, content, indent string) {
			brand := content
			if brand == "" {
				brand = "Logo"
			}
			fmt.Fprintf(b, "\n%s  <div class=\"container-fluid\">", indent)
			fmt.Fprintf(b, "\n%s    <a class=\"navbar-brand\" href=\"#\">%s</a>", indent, brand)
			fmt.Fprintf(b, "\n%s    <button class=\"navbar-toggler\" type=\"button\">", indent)
			fmt.Fprintf(b, "\n%s      <span class=\"navbar-toggler-icon\"></span>", indent)
			fmt.Fprintf(b, "\n%s    </button>", indent)
			fmt.Fprintf(b, "\n%s    <div class=\"collapse navbar-collapse\">", indent)
			fmt.Fprintf(b, "\n%s      <ul class=\"navbar-nav\">", indent)
			for _, item := range []string{"Home", "Features", "Pricing"} {
				cls := "nav-link"
				if item == "Home" {
					cls = "nav-link active"
				}
				fmt.Fprintf(b, "\n%s        <li class=\"nav-item\"><a class=\"%s\" href=\"#\">%s</a></li>", indent, cls, item)
			}
			fmt.Fprintf(b, "\n%s      </ul>", indent)
			fmt.Fprintf(b, "\n%s    </div>", indent)
			fmt.Fprintf(b, "\n%s  </div>", indent)
		},
		alwaysCSS: []decl{{"padding", "0.5rem 1rem"}},
	},

	"link": {
		tag: "a",
		attrs: func(g *generator, id, name, content string) string {
			return ` href="#"`
		},
	},

	"menu":     {tag: "div", classPrefix: "menu"},
	"menuItem": {tag: "div", classPrefix: "menu-item"},

	"card": {
		tag:         "div",
		classPrefix: "card",
		inner: func(g *generator, b *strings.Builder, id, content, indent string) {
			title := content
			if title == "" {
				title = "Card title"
			}
			fmt.Fprintf(b, "\n%s  <div class=\"card-body\">", indent)
			fmt.Fprintf(b, "\n%s    <h5 class=\"card-title\">%s</h5>", indent, title)
			fmt.Fprintf(b, "\n%s    <p class=\"card-text\">Example content for this card.</p>", indent)
			fmt.Fprintf(b, "\n%s  </div>", indent)
		},
		alwaysCSS: []decl{
			{"border-radius", "4px"},
			{"overflow", "hidden"},
			{"display", "flex"},
			{"flex-direction", "column"},
		},
		fallbackCSS: []fallback{
			{"boxShadow", "box-shadow", "0 2px 5px rgba(0,0,0,0.1)"},
		},
		extraCSS: func(b *strings.Builder, class string) {
			fmt.Fprintf(b, "%s .card-body {\n  padding: 1rem;\n  flex: 1;\n}\n\n", class)
			fmt.Fprintf(b, "%s .card-title {\n  margin-top: 0;\n  margin-bottom: 0.5rem;\n  font-size: 1.25rem;\n}\n\n", class)
		},
	},

	"hero": {
		tag:         "div",
		classPrefix: "hero-section",
		inner: func(g *generator, b *strings.Builder, id, content, indent string) {
			title := content
			if title == "" {
				title = "Main headline"
			}
			fmt.Fprintf(b, "\n%s  <div class=\"hero-content\">", indent)
			fmt.Fprintf(b, "\n%s    <h1>%s</h1>", indent, title)
			fmt.Fprintf(b, "\n%s    <p>Subtitle or description for this hero section.</p>", indent)
			fmt.Fprintf(b, "\n%s    <button class=\"btn btn-primary\">Primary action</button>", indent)
			fmt.Fprintf(b, "\n%s  </div>", indent)
		},
		alwaysCSS: []decl{
			{"display", "flex"},
			{"align-items", "center"},
			{"justify-content", "center"},
			{"flex-direction", "column"},
			{"text-align", "center"},
		},
	},

	"footer": {
		tag: "footer",
		inner: func(g *generator, b *strings.Builder, id, content, indent string) {
			fmt.Fprintf(b, "\n%s  <div class=\"container\">", indent)
			fmt.Fprintf(b, "\n%s    <div class=\"row\">", indent)
			fmt.Fprintf(b, "\n%s      <div class=\"col-md-4\">", indent)
			fmt.Fprintf(b, "\n%s        <h5>Section 1</h5>", indent)
			fmt.Fprintf(b, "\n%s        <ul class=\"list-unstyled\">", indent)
			fmt.Fprintf(b, "\n%s          <li><a href=\"#\">Link 1</a></li>", indent)
			fmt.Fprintf(b, "\n%s          <li><a href=\"#\">Link 2</a></li>", indent)
			fmt.Fprintf(b, "\n%s        </ul>", indent)
			fmt.Fprintf(b, "\n%s      </div>", indent)
			fmt.Fprintf(b, "\n%s      <div class=\"col-md-4\">", indent)
			fmt.Fprintf(b, "\n%s        <h5>Section 2</h5>", indent)
			fmt.Fprintf(b, "\n%s        <p>Contact information</p>", indent)
			fmt.Fprintf(b, "\n%s      </div>", indent)
			fmt.Fprintf(b, "\n%s      <div class=\"col-md-4\">", indent)
			fmt.Fprintf(b, "\n%s        <h5>Social</h5>", indent)
			fmt.Fprintf(b, "\n%s        <div class=\"social-links\">", indent)
			fmt.Fprintf(b, "\n%s          <a href=\"#\"><i class=\"fa fa-facebook\"></i></a>", indent)
			fmt.Fprintf(b, "\n%s          <a href=\"#\"><i class=\"fa fa-twitter\"></i></a>", indent)
			fmt.Fprintf(b, "\n%s        </div>", indent)
			fmt.Fprintf(b, "\n%s      </div>", indent)
			fmt.Fprintf(b, "\n%s    </div>", indent)
			fmt.Fprintf(b, "\n%s    <div class=\"row mt-3\">", indent)
			fmt.Fprintf(b, "\n%s      <div class=\"col-12 text-center\">", indent)
			fmt.Fprintf(b, "\n%s        <p>&copy; 2025 %s. All rights reserved.</p>", indent, g.project.Name)
			fmt.Fprintf(b, "\n%s      </div>", indent)
			fmt.Fprintf(b, "\n%s    </div>", indent)
			fmt.Fprintf(b, "\n%s  </div>", indent)
		},
		alwaysCSS: []decl{{"padding", "2rem 0"}},
		fallbackCSS: []fallback{
			{"backgroundColor", "background-color", "#333"},
			{"color", "color", "white"},
		},
	},

	"carousel": {tag: "div", classPrefix: "carousel"},

	"video": {
		tag:         "div",
		classPrefix: "video-container",
		inner: func(g *generator, b *strings.Builder, id, content, indent string) {
			label := content
			if label == "" {
				label = "Video"
			}
			fmt.Fprintf(b, "\n%s  <div class=\"video-placeholder\">", indent)
			fmt.Fprintf(b, "\n%s    <i class=\"fa fa-play-circle\"></i>", indent)
			fmt.Fprintf(b, "\n%s    <span>%s</span>", indent, label)
			fmt.Fprintf(b, "\n%s  </div>", indent)
		},
		extraCSS: func(b *strings.Builder, class string) {
			fmt.Fprintf(b, "%s .video-placeholder {\n  width: 100%%;\n  height: 100%%;\n  display: flex;\n  flex-direction: column;\n  align-items: center;\n  justify-content: center;\n  background-color: #000;\n  color: white;\n}\n\n", class)
			fmt.Fprintf(b, "%s .fa-play-circle {\n  font-size: 3rem;\n  margin-bottom: 1rem;\n}\n\n", class)
		},
	},

	"avatar": {
		tag:         "div",
		classPrefix: "avatar",
		innerInline: true,
		inner: func(g *generator, b *strings.Builder, id, content, indent string) {
			initial := "U"
			for _, r := range content {
				initial = string(r)
				break
			}
			b.WriteString(initial)
		},
		alwaysCSS: []decl{
			{"display", "flex"},
			{"align-items", "center"},
			{"justify-content", "center"},
			{"border-radius", "50%"},
			{"font-weight", "bold"},
		},
		fallbackCSS: []fallback{
			{"backgroundColor", "background-color", "#4285f4"},
			{"color", "color", "white"},
		},
	},

	"alert": {
		tag:         "div",
		classPrefix: "alert",
		inner: func(g *generator, b *strings.Builder, id, content, indent string) {
			msg := content
			if msg == "" {
				msg = "Alert message"
			}
			fmt.Fprintf(b, "\n%s  <i class=\"fa fa-exclamation-circle\"></i>", indent)
			fmt.Fprintf(b, "\n%s  <span>%s</span>", indent, msg)
		},
		alwaysCSS: []decl{
			{"display", "flex"},
			{"align-items", "center"},
			{"padding", "1rem"},
			{"border-radius", "4px"},
			{"gap", "10px"},
		},
		fallbackCSS: []fallback{
			{"backgroundColor", "background-color", "#f8d7da"},
			{"color", "color", "#721c24"},
		},
	},

	"badge": {
		tag:         "span",
		classPrefix: "badge",
		alwaysCSS: []decl{
			{"display", "inline-flex"},
			{"align-items", "center"},
			{"justify-content", "center"},
			{"padding", "0.25em 0.5em"},
			{"border-radius", "10px"},
			{"font-size", "0.75em"},
		},
		fallbackCSS: []fallback{
			{"backgroundColor", "background-color", "#4285f4"},
			{"color", "color", "white"},
		},
	},

	"tooltip": {
		tag:         "div",
		classPrefix: "tooltip",
		alwaysCSS: []decl{
			{"display", "flex"},
			{"align-items", "center"},
			{"justify-content", "center"},
			{"padding", "0.5rem"},
			{"border-radius", "4px"},
			{"font-size", "0.8em"},
		},
		fallbackCSS: []fallback{
			{"backgroundColor", "background-color", "#333"},
			{"color", "color", "white"},
		},
	},

	"progress": {
		tag:         "div",
		classPrefix: "progress",
		inner: func(g *generator, b *strings.Builder, id, content, indent string) {
			fmt.Fprintf(b, "\n%s  <div class=\"progress-bar\" style=\"width: 50%%\"></div>", indent)
		},
		alwaysCSS: []decl{
			{"display", "flex"},
			{"align-items", "center"},
			{"border-radius", "4px"},
			{"overflow", "hidden"},
		},
		fallbackCSS: []fallback{
			{"backgroundColor", "background-color", "#e9ecef"},
		},
		extraCSS: func(b *strings.Builder, class string) {
			fmt.Fprintf(b, "%s .progress-bar {\n  height: 100%%;\n  background-color: #4285f4;\n}\n\n", class)
		},
	},
}

// descriptorFor returns the descriptor for a widget kind, falling back to the
// container shape for anything unknown.
func descriptorFor(kind string) descriptor {
	if d, ok := descriptors[kind]; ok {
		return d
	}
	return defaultDescriptor
}
