//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	fstorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"godeklar/internal/export"
	"godeklar/internal/geom"
	applog "godeklar/internal/log"
	"godeklar/internal/scene"
	"godeklar/internal/session"
	"godeklar/internal/version"
)

// Run opens the editor window on an already prepared session and blocks
// until it is closed.
func Run(sess *session.Session) error {
	l := applog.WithComponent("ui")
	l.Info("starting UI", slog.String("drawing", sess.Key()))

	fyneApp := app.NewWithID("godeklar")
	w := fyneApp.NewWindow("godeklar")
	prefs := fyneApp.Preferences()
	winW := max(prefs.IntWithFallback("window.width", 1000), 640)
	winH := max(prefs.IntWithFallback("window.height", 750), 480)
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	ctl := NewController(sess)
	dc := NewDrawingCanvas(ctl)
	status := widget.NewLabel("")
	refresh := func() {
		w.SetTitle(ctl.Title())
		status.SetText(ctl.Status())
	}
	ctl.OnChange = func() {
		dc.Refresh()
		refresh()
	}
	dc.OnSecondary = func(pos fyne.Position, abs fyne.Position) {
		showContextMenu(w, ctl, pt(pos), abs)
	}

	snapshot := func() {
		if !sess.Dirty() {
			return
		}
		if err := sess.Snapshot(context.Background()); err != nil {
			l.Warn("snapshot failed", slog.Any("err", err))
		}
	}

	openItem := fyne.NewMenuItem("Open…", func() {
		fd := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
			if err != nil || rc == nil {
				return
			}
			path := rc.URI().Path()
			_ = rc.Close()
			errs, oerr := sess.Open(path)
			if oerr != nil {
				dialog.ShowError(oerr, w)
				return
			}
			if len(errs) > 0 {
				dialog.ShowError(fmt.Errorf("%d items skipped: %v", len(errs), errs[0]), w)
			}
			ctl.OnChange()
		}, w)
		fd.SetFilter(fstorage.NewExtensionFileFilter([]string{".yaml", ".yml"}))
		fd.Show()
	})
	saveAs := func() {
		fd := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
			if err != nil || wc == nil {
				return
			}
			path := wc.URI().Path()
			_ = wc.Close()
			if err := sess.SaveAs(path); err != nil {
				dialog.ShowError(err, w)
			}
			refresh()
		}, w)
		fd.SetFileName("drawing.yaml")
		fd.Show()
	}
	saveItem := fyne.NewMenuItem("Save", func() {
		if sess.Path() == "" {
			saveAs()
			return
		}
		if err := sess.Save(); err != nil {
			l.Error("save failed", slog.Any("err", err))
			dialog.ShowError(err, w)
		}
		refresh()
	})
	saveAsItem := fyne.NewMenuItem("Save As…", saveAs)
	exportItem := fyne.NewMenuItem("Export…", func() {
		fd := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
			if err != nil || wc == nil {
				return
			}
			path := wc.URI().Path()
			_ = wc.Close()
			if err := export.File(ctl.Scene(), path, export.Options{Margin: 20}); err != nil {
				dialog.ShowError(err, w)
				return
			}
			status.SetText("Exported " + filepath.Base(path))
		}, w)
		fd.SetFilter(fstorage.NewExtensionFileFilter(export.Formats))
		fd.SetFileName(strings.TrimSuffix(filepath.Base(sess.Key()), filepath.Ext(sess.Key())) + ".png")
		fd.Show()
	})
	openItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyO, Modifier: fyne.KeyModifierShortcutDefault}
	saveItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: fyne.KeyModifierShortcutDefault}
	fileMenu := fyne.NewMenu("File", openItem, saveItem, saveAsItem, fyne.NewMenuItemSeparator(), exportItem)

	action := func(a scene.Action) func() { return func() { ctl.Action(a) } }
	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", action(scene.ActionUndo)),
		fyne.NewMenuItem("Redo", action(scene.ActionRedo)),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Drawing Properties…", func() { showGeneralDialog(w, ctl) }),
	)
	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", action(scene.ActionZoomIn)),
		fyne.NewMenuItem("Zoom Out", action(scene.ActionZoomOut)),
		fyne.NewMenuItem("Toggle Grid", action(scene.ActionToggleGrid)),
	)
	helpMenu := fyne.NewMenu("Help", fyne.NewMenuItem("About", func() {
		dialog.ShowInformation("About", "godeklar "+version.String(), w)
	}))
	w.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, viewMenu, helpMenu))

	for key, mods := range map[fyne.KeyName]string{fyne.KeyZ: "ctrl+z", fyne.KeyY: "ctrl+y", fyne.KeyC: "ctrl+c", fyne.KeyV: "ctrl+v"} {
		w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: key, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) {
			ctl.Key(mods)
		})
	}
	w.Canvas().SetOnTypedKey(func(e *fyne.KeyEvent) {
		switch e.Name {
		case fyne.KeyDelete, fyne.KeyBackspace, fyne.KeyEscape:
			ctl.Key(strings.ToLower(string(e.Name)))
		}
	})
	w.Canvas().SetOnTypedRune(func(r rune) { ctl.Key(string(r)) })

	w.SetCloseIntercept(func() {
		prefs.SetInt("window.width", int(w.Canvas().Size().Width))
		prefs.SetInt("window.height", int(w.Canvas().Size().Height))
		if !sess.Dirty() {
			w.Close()
			return
		}
		dialog.ShowConfirm("Unsaved changes", "Quit and keep the changes for recovery?", func(ok bool) {
			if ok {
				snapshot()
				w.Close()
			}
		}, w)
	})

	w.SetContent(container.NewBorder(nil, status, nil, nil, dc))
	refresh()
	w.ShowAndRun()
	l.Info("UI closed")
	return nil
}

func showContextMenu(w fyne.Window, ctl *Controller, p geom.Point, abs fyne.Position) {
	var items []*fyne.MenuItem
	for _, e := range ctl.ContextMenu(p) {
		it := fyne.NewMenuItem(e.Label, func() {
			if err := e.Run(); err != nil {
				dialog.ShowError(err, w)
			}
		})
		it.Disabled = e.Disabled
		items = append(items, it)
	}
	if sh, fields := ctl.Properties(p); sh != nil {
		items = append(items, fyne.NewMenuItemSeparator(), fyne.NewMenuItem("Properties of "+sh.TypeAndName()+"…", func() {
			showFieldsDialog(w, "Properties", fields, func(edited map[string]string) error {
				return ctl.ApplyProperties(sh, fields, edited)
			})
		}))
	}
	items = append(items, fyne.NewMenuItem("Drawing Properties…", func() { showGeneralDialog(w, ctl) }))
	widget.ShowPopUpMenuAtPosition(fyne.NewMenu("", items...), w.Canvas(), abs)
}

func showGeneralDialog(w fyne.Window, ctl *Controller) {
	fields := ctl.GeneralFields()
	showFieldsDialog(w, "Drawing Properties", fields, func(edited map[string]string) error {
		return ctl.ApplyGeneral(fields, edited)
	})
}

// showFieldsDialog edits fields as text entries; apply runs on confirm.
func showFieldsDialog(w fyne.Window, title string, fields []Field, apply func(map[string]string) error) {
	entries := make(map[string]*widget.Entry, len(fields))
	var items []*widget.FormItem
	for _, f := range fields {
		e := widget.NewEntry()
		e.SetText(f.Text)
		entries[f.Key] = e
		items = append(items, widget.NewFormItem(f.Key, e))
	}
	dialog.ShowForm(title, "Apply", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		edited := make(map[string]string, len(entries))
		for k, e := range entries {
			edited[k] = e.Text
		}
		if err := apply(edited); err != nil {
			dialog.ShowError(err, w)
		}
	}, w)
}

// DrawingCanvas paints the controller's frame and forwards input to it.
type DrawingCanvas struct {
	widget.BaseWidget
	ctl *Controller

	// OnSecondary receives the widget and canvas positions of a right click.
	OnSecondary func(pos, abs fyne.Position)
}

var (
	_ desktop.Mouseable      = (*DrawingCanvas)(nil)
	_ desktop.Hoverable      = (*DrawingCanvas)(nil)
	_ fyne.Draggable         = (*DrawingCanvas)(nil)
	_ fyne.Scrollable        = (*DrawingCanvas)(nil)
	_ fyne.SecondaryTappable = (*DrawingCanvas)(nil)
)

func NewDrawingCanvas(ctl *Controller) *DrawingCanvas {
	dc := &DrawingCanvas{ctl: ctl}
	dc.ExtendBaseWidget(dc)
	return dc
}

func pt(p fyne.Position) geom.Point { return geom.Pt(float64(p.X), float64(p.Y)) }

func (d *DrawingCanvas) MouseDown(e *desktop.MouseEvent) {
	if e.Button == desktop.MouseButtonPrimary {
		d.ctl.Down(pt(e.Position))
	}
}

func (d *DrawingCanvas) MouseUp(e *desktop.MouseEvent) {
	if e.Button == desktop.MouseButtonPrimary {
		d.ctl.Up(pt(e.Position))
	}
}

func (d *DrawingCanvas) Dragged(e *fyne.DragEvent) { d.ctl.Drag(pt(e.Position)) }
func (d *DrawingCanvas) DragEnd()                  {}

func (d *DrawingCanvas) MouseIn(e *desktop.MouseEvent)    { d.ctl.Hover(pt(e.Position)) }
func (d *DrawingCanvas) MouseMoved(e *desktop.MouseEvent) { d.ctl.Hover(pt(e.Position)) }
func (d *DrawingCanvas) MouseOut()                        {}

func (d *DrawingCanvas) Scrolled(e *fyne.ScrollEvent) {
	d.ctl.Wheel(pt(e.Position), float64(e.Scrolled.DY))
}

func (d *DrawingCanvas) TappedSecondary(e *fyne.PointEvent) {
	if d.OnSecondary != nil {
		d.OnSecondary(e.Position, e.AbsolutePosition)
	}
}

func (d *DrawingCanvas) MinSize() fyne.Size { return fyne.NewSize(320, 240) }

func (d *DrawingCanvas) CreateRenderer() fyne.WidgetRenderer {
	r := &drawingRenderer{dc: d}
	r.raster = canvas.NewRaster(func(int, int) image.Image { return d.ctl.Frame() })
	return r
}

type drawingRenderer struct {
	dc     *DrawingCanvas
	raster *canvas.Raster
}

func (r *drawingRenderer) Destroy()                     {}
func (r *drawingRenderer) Objects() []fyne.CanvasObject { return []fyne.CanvasObject{r.raster} }
func (r *drawingRenderer) MinSize() fyne.Size           { return r.dc.MinSize() }
func (r *drawingRenderer) Refresh()                     { canvas.Refresh(r.raster) }

func (r *drawingRenderer) Layout(size fyne.Size) {
	r.raster.Resize(size)
	r.raster.Move(fyne.NewPos(0, 0))
	r.dc.ctl.Resize(float64(size.Width), float64(size.Height))
}
