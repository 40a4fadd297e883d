package codegen

import (
	"fmt"
	"strings"

	"main/internal/element"
)

// emitTS renders the component class: reactive form controls for every bound
// input, a shared control for radio groups, and a resize hook that keeps the
// absolute layout readable on narrow screens.
func (g *generator) emitTS(elements []*element.Element) string {
	controls, hasRadio := g.controlIDs(elements)

	var b strings.Builder
	b.WriteString("import { Component, AfterViewInit, ElementRef } from '@angular/core';\n")
	b.WriteString("import { FormControl, FormGroup, ReactiveFormsModule } from '@angular/forms';\n")
	b.WriteString("import { CommonModule } from '@angular/common';\n\n")

	fmt.Fprintf(&b, "@Component({\n  selector: 'app-%s',\n  standalone: true,\n  imports: [CommonModule, ReactiveFormsModule],\n  templateUrl: './%s.component.html',\n  styleUrls: ['./%s.component.css']\n})\n",
		g.componentName, g.componentName, g.componentName)

	fmt.Fprintf(&b, "export class %s implements AfterViewInit {\n", g.className)

	b.WriteString("  formControls: { [key: string]: FormControl } = {\n")
	for _, id := range controls {
		initial := "''"
		if g.controlKinds[id] == "checkbox" {
			initial = "false"
		}
		fmt.Fprintf(&b, "    %s: new FormControl(%s),\n", id, initial)
	}
	if hasRadio {
		b.WriteString("    radioGroup: new FormControl(''),\n")
	}
	b.WriteString("  };\n\n")

	b.WriteString("  form = new FormGroup(this.formControls);\n\n")

	b.WriteString("  constructor(private host: ElementRef) {}\n\n")

	fmt.Fprintf(&b, "  ngAfterViewInit(): void {\n")
	fmt.Fprintf(&b, "    const updateScale = () => {\n")
	fmt.Fprintf(&b, "      const available = this.host.nativeElement.parentElement?.clientWidth ?? %d;\n", g.project.CanvasWidth)
	fmt.Fprintf(&b, "      const scale = Math.min(1, available / %d);\n", g.project.CanvasWidth)
	fmt.Fprintf(&b, "      this.host.nativeElement.style.setProperty('--responsive-scale', String(scale));\n")
	fmt.Fprintf(&b, "      if (scale < 1) {\n")
	fmt.Fprintf(&b, "        this.host.nativeElement.style.height = (%d * scale) + 'px';\n", g.project.CanvasHeight)
	fmt.Fprintf(&b, "      } else {\n")
	fmt.Fprintf(&b, "        this.host.nativeElement.style.height = '%dpx';\n", g.project.CanvasHeight)
	fmt.Fprintf(&b, "      }\n")
	fmt.Fprintf(&b, "    };\n")
	fmt.Fprintf(&b, "    updateScale();\n")
	fmt.Fprintf(&b, "    window.addEventListener('resize', updateScale);\n")
	fmt.Fprintf(&b, "  }\n\n")

	b.WriteString("  onButtonClick(id: string): void {\n    console.log('button clicked:', id);\n  }\n")
	b.WriteString("}\n")
	return b.String()
}

// emitModule renders an NgModule wrapper for consumers not using standalone
// components.
func (g *generator) emitModule() string {
	var b strings.Builder
	b.WriteString("import { NgModule } from '@angular/core';\n")
	b.WriteString("import { CommonModule } from '@angular/common';\n")
	b.WriteString("import { ReactiveFormsModule } from '@angular/forms';\n")
	fmt.Fprintf(&b, "import { %s } from './%s.component';\n\n", g.className, g.componentName)
	fmt.Fprintf(&b, "@NgModule({\n  imports: [CommonModule, ReactiveFormsModule, %s],\n  exports: [%s]\n})\n", g.className, g.className)
	fmt.Fprintf(&b, "export class %sModule {}\n", strings.TrimSuffix(g.className, "Component"))
	return b.String()
}
