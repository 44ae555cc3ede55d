package gui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/fmuoria/candidate-manager/internal/client"
	"github.com/fmuoria/candidate-manager/internal/config"
	"github.com/fmuoria/candidate-manager/internal/export"
	"github.com/fmuoria/candidate-manager/internal/ingestion"
	"github.com/fmuoria/candidate-manager/internal/manager"
	"github.com/fmuoria/candidate-manager/internal/models"
)

const noFileText = "No file selected"

// App represents the main GUI application
type App struct {
	fyneApp    fyne.App
	mainWindow fyne.Window
	config     *config.Config
	logger     *slog.Logger
	manager    *manager.Manager

	// UI Components
	nameEntry    *widget.Entry
	surnameEntry *widget.Entry
	fileLabel    *widget.Label
	previewLabel *widget.Label
	submitBtn    *widget.Button
	errorBanner  *fyne.Container
	listSection  *fyne.Container
	table        *widget.Table
	pageInfo     *widget.Label
	firstBtn     *widget.Button
	prevBtn      *widget.Button
	nextBtn      *widget.Button
	lastBtn      *widget.Button
	editBtn      *widget.Button
	deleteBtn    *widget.Button
	exportBtn    *widget.Button

	// page is the slice currently rendered; only touched on the UI goroutine
	page     []models.Candidate
	selected *models.Candidate
}

// NewApp creates a new GUI application
func NewApp(cfg *config.Config, logger *slog.Logger) *App {
	a := app.New()
	w := a.NewWindow("Candidate Manager")
	w.Resize(fyne.NewSize(900, 700))

	svc := client.New(cfg.APIURL, client.WithLogger(logger))

	guiApp := &App{
		fyneApp:    a,
		mainWindow: w,
		config:     cfg,
		logger:     logger,
		manager:    manager.New(svc, cfg.PageSize, logger),
	}

	guiApp.setupUI()

	// Manager callbacks may come from request goroutines
	guiApp.manager.OnChange(func() {
		fyne.Do(guiApp.refreshView)
	})

	return guiApp
}

// Run loads the candidates and starts the GUI application
func (a *App) Run() {
	a.handleRefresh()
	a.mainWindow.ShowAndRun()
}

// setupUI initializes all UI components
func (a *App) setupUI() {
	tabs := container.NewAppTabs(
		container.NewTabItem("Candidates", a.createCandidatesTab()),
		container.NewTabItem("Settings", a.createSettingsTab()),
	)

	a.mainWindow.SetContent(tabs)
	a.refreshView()
}

// createCandidatesTab creates the create form, the table and the paginator
func (a *App) createCandidatesTab() fyne.CanvasObject {
	// Create form
	a.nameEntry = widget.NewEntry()
	a.nameEntry.SetPlaceHolder("Name")
	a.nameEntry.OnChanged = a.manager.SetName

	a.surnameEntry = widget.NewEntry()
	a.surnameEntry.SetPlaceHolder("Surname")
	a.surnameEntry.OnChanged = a.manager.SetSurname

	a.fileLabel = widget.NewLabel(noFileText)
	a.previewLabel = widget.NewLabel("")
	browseBtn := widget.NewButton("Browse...", a.handleBrowse)
	templateBtn := widget.NewButton("Download Template", a.handleTemplate)

	a.submitBtn = widget.NewButton("Submit", a.handleSubmit)

	formSection := container.NewVBox(
		widget.NewLabel("New Candidate"),
		widget.NewForm(
			widget.NewFormItem("Name", a.nameEntry),
			widget.NewFormItem("Surname", a.surnameEntry),
			widget.NewFormItem("Excel File", container.NewBorder(nil, nil, nil, container.NewHBox(browseBtn, templateBtn), a.fileLabel)),
		),
		a.previewLabel,
		container.NewHBox(a.submitBtn),
	)

	// Error banner replaces the list while the service is failing
	a.errorBanner = container.NewVBox(
		widget.NewLabel("Could not reach the candidates service."),
		widget.NewButton("Retry", a.handleRefresh),
	)

	a.table = widget.NewTable(
		func() (int, int) {
			return len(a.page) + 1, len(displayedColumns) // +1 for header
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("Template")
		},
		func(id widget.TableCellID, cell fyne.CanvasObject) {
			label := cell.(*widget.Label)
			if id.Row == 0 {
				label.TextStyle = fyne.TextStyle{Bold: true}
				label.SetText(displayedColumns[id.Col])
				return
			}
			label.TextStyle = fyne.TextStyle{}
			if id.Row-1 < len(a.page) {
				label.SetText(cellText(a.page[id.Row-1], id.Col))
			}
		},
	)
	a.table.SetColumnWidth(0, 180)
	a.table.SetColumnWidth(1, 180)
	a.table.SetColumnWidth(2, 110)
	a.table.SetColumnWidth(3, 80)
	a.table.SetColumnWidth(4, 110)
	a.table.OnSelected = a.handleSelect

	a.editBtn = widget.NewButton("Edit", a.handleEdit)
	a.deleteBtn = widget.NewButton("Delete", a.handleDelete)
	a.exportBtn = widget.NewButton("Export to Excel", a.handleExport)
	refreshBtn := widget.NewButton("Refresh", a.handleRefresh)

	a.pageInfo = widget.NewLabel("")
	a.firstBtn = widget.NewButton("<<", func() { a.manager.FirstPage() })
	a.prevBtn = widget.NewButton("<", func() { a.manager.PrevPage() })
	a.nextBtn = widget.NewButton(">", func() { a.manager.NextPage() })
	a.lastBtn = widget.NewButton(">>", func() { a.manager.LastPage() })

	paginator := container.NewHBox(a.firstBtn, a.prevBtn, a.pageInfo, a.nextBtn, a.lastBtn)
	actions := container.NewHBox(a.editBtn, a.deleteBtn, refreshBtn, a.exportBtn)

	a.listSection = container.NewBorder(
		actions,
		paginator,
		nil, nil,
		a.table,
	)

	return container.NewBorder(
		container.NewVBox(formSection, widget.NewSeparator(), a.errorBanner),
		nil, nil, nil,
		a.listSection,
	)
}

// createSettingsTab creates the settings tab
func (a *App) createSettingsTab() fyne.CanvasObject {
	apiEntry := widget.NewEntry()
	apiEntry.SetText(a.config.APIURL)

	pageSizeEntry := widget.NewEntry()
	pageSizeEntry.SetText(strconv.Itoa(a.config.PageSize))

	timeoutEntry := widget.NewEntry()
	timeoutEntry.SetText(strconv.Itoa(a.config.RequestTimeoutSeconds))

	levelSelect := widget.NewSelect([]string{"debug", "info", "warn", "error"}, nil)
	levelSelect.SetSelected(a.config.LogLevel)

	form := widget.NewForm(
		widget.NewFormItem("API URL", apiEntry),
		widget.NewFormItem("Page Size", pageSizeEntry),
		widget.NewFormItem("Request Timeout (s)", timeoutEntry),
		widget.NewFormItem("Log Level", levelSelect),
	)

	// readForm builds a candidate config from the entries without touching a.config
	readForm := func() (*config.Config, error) {
		cfg := *a.config
		cfg.APIURL = apiEntry.Text
		cfg.LogLevel = levelSelect.Selected

		pageSize, err := strconv.Atoi(pageSizeEntry.Text)
		if err != nil {
			return nil, fmt.Errorf("page size must be a number: %w", err)
		}
		cfg.PageSize = pageSize

		timeout, err := strconv.Atoi(timeoutEntry.Text)
		if err != nil {
			return nil, fmt.Errorf("request timeout must be a number: %w", err)
		}
		cfg.RequestTimeoutSeconds = timeout

		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	saveBtn := widget.NewButton("Save Settings", func() {
		cfg, err := readForm()
		if err != nil {
			dialog.ShowError(fmt.Errorf("validation failed: %w", err), a.mainWindow)
			return
		}

		urlChanged := cfg.APIURL != a.config.APIURL
		*a.config = *cfg
		if err := a.config.Save(); err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}

		a.manager.SetPageSize(a.config.PageSize)

		msg := "Settings saved successfully"
		if urlChanged {
			msg += "\nThe new API URL is used after a restart."
		}
		dialog.ShowInformation("Success", msg, a.mainWindow)
	})

	testBtn := widget.NewButton("Test Connection", func() {
		cfg, err := readForm()
		if err != nil {
			dialog.ShowError(fmt.Errorf("validation failed: %w", err), a.mainWindow)
			return
		}

		probe := client.New(cfg.APIURL, client.WithLogger(a.logger))
		go func() {
			ctx, cancel := contextWithTimeout(cfg.RequestTimeout())
			defer cancel()
			candidates, err := probe.List(ctx)

			fyne.Do(func() {
				if err != nil {
					dialog.ShowError(fmt.Errorf("connection failed: %w", err), a.mainWindow)
					return
				}
				dialog.ShowInformation("Success", fmt.Sprintf("Connected to %s (%d candidates)", probe.BaseURL(), len(candidates)), a.mainWindow)
			})
		}()
	})

	return container.NewVBox(
		form,
		container.NewHBox(saveBtn, testBtn),
	)
}

// refreshView re-renders everything from the manager state. UI goroutine only.
func (a *App) refreshView() {
	form := a.manager.Form()
	if a.nameEntry.Text != form.Name {
		a.nameEntry.SetText(form.Name)
	}
	if a.surnameEntry.Text != form.Surname {
		a.surnameEntry.SetText(form.Surname)
	}
	if form.File != nil {
		a.fileLabel.SetText(form.File.FileName)
	} else {
		a.fileLabel.SetText(noFileText)
	}
	a.previewLabel.SetText(previewText(form.File))

	if a.manager.ServerError() {
		a.errorBanner.Show()
		a.listSection.Hide()
	} else {
		a.errorBanner.Hide()
		a.listSection.Show()
	}

	a.page = a.manager.Page()
	index, count := a.manager.PageIndex(), a.manager.PageCount()
	a.pageInfo.SetText(pageLabel(index, count, a.manager.Len()))
	setEnabled(a.firstBtn, index > 0)
	setEnabled(a.prevBtn, index > 0)
	setEnabled(a.nextBtn, index < count-1)
	setEnabled(a.lastBtn, index < count-1)
	setEnabled(a.exportBtn, a.manager.Len() > 0)

	a.selected = nil
	a.table.UnselectAll()
	a.editBtn.Disable()
	a.deleteBtn.Disable()
	a.table.Refresh()
}

func setEnabled(b *widget.Button, enabled bool) {
	if enabled {
		b.Enable()
	} else {
		b.Disable()
	}
}

// handleSelect tracks the selected row for edit and delete
func (a *App) handleSelect(id widget.TableCellID) {
	if id.Row == 0 || id.Row-1 >= len(a.page) {
		a.selected = nil
		a.editBtn.Disable()
		a.deleteBtn.Disable()
		return
	}

	c := a.page[id.Row-1]
	a.selected = &c
	a.editBtn.Enable()
	setEnabled(a.deleteBtn, c.HasID())
}

// handleRefresh reloads the list from the service
func (a *App) handleRefresh() {
	a.runAsync("load", a.manager.Load, nil)
}

// handleBrowse lets the user pick a workbook and ingests it into the form
func (a *App) handleBrowse() {
	dialog.ShowFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		if rc == nil {
			return // User canceled
		}
		defer rc.Close()

		data, err := io.ReadAll(rc)
		if err != nil {
			dialog.ShowError(fmt.Errorf("failed to read file: %w", err), a.mainWindow)
			return
		}

		name := rc.URI().Name()
		declared := ingestion.DetectContentType(name, data)
		if _, err := a.manager.AttachFile(name, declared, data); err != nil {
			dialog.ShowInformation("Invalid file", alertText(err), a.mainWindow)
		}
	}, a.mainWindow)
}

// handleTemplate saves a blank upload workbook
func (a *App) handleTemplate() {
	d := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		if uc == nil {
			return // User canceled
		}
		defer uc.Close()

		if err := export.WriteTemplate(uc); err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		dialog.ShowInformation("Success", "Template saved to "+uc.URI().Name(), a.mainWindow)
	}, a.mainWindow)
	d.SetFileName("candidate_template.xlsx")
	d.Show()
}

// handleSubmit sends the create form
func (a *App) handleSubmit() {
	if err := a.manager.Form().Validate(); err != nil {
		dialog.ShowInformation("Incomplete form", err.Error(), a.mainWindow)
		return
	}

	a.submitBtn.Disable()
	a.runAsync("create", func(ctx context.Context) error {
		_, err := a.manager.Submit(ctx)
		return err
	}, func() {
		a.submitBtn.Enable()
	})
}

// handleEdit opens the edit dialog for the selected candidate
func (a *App) handleEdit() {
	if a.selected == nil {
		return
	}
	original := *a.selected
	form := manager.NewEditForm(original)

	nameEntry := widget.NewEntry()
	nameEntry.SetText(form.Name)

	surnameEntry := widget.NewEntry()
	surnameEntry.SetText(form.Surname)

	options := make([]string, len(models.Seniorities))
	for i, s := range models.Seniorities {
		options[i] = string(s)
	}
	senioritySelect := widget.NewSelect(options, nil)
	senioritySelect.SetSelected(string(form.Seniority))

	yearsEntry := widget.NewEntry()
	yearsEntry.SetText(strconv.Itoa(form.Years))
	yearsEntry.Validator = func(s string) error {
		_, err := manager.ParseYears(s)
		return err
	}

	availabilityCheck := widget.NewCheck("Available", nil)
	availabilityCheck.SetChecked(form.Availability)

	items := []*widget.FormItem{
		widget.NewFormItem("Name", nameEntry),
		widget.NewFormItem("Surname", surnameEntry),
		widget.NewFormItem("Seniority", senioritySelect),
		widget.NewFormItem("Years", yearsEntry),
		widget.NewFormItem("Availability", availabilityCheck),
	}

	d := dialog.NewForm("Edit Candidate", "Save", "Cancel", items, func(confirmed bool) {
		if !confirmed {
			return
		}

		years, err := manager.ParseYears(yearsEntry.Text)
		if err != nil {
			dialog.ShowInformation("Invalid value", err.Error(), a.mainWindow)
			return
		}

		edited := manager.EditForm{
			Name:         nameEntry.Text,
			Surname:      surnameEntry.Text,
			Seniority:    models.Seniority(senioritySelect.Selected),
			Years:        years,
			Availability: availabilityCheck.Checked,
		}
		a.runAsync("update", func(ctx context.Context) error {
			_, err := a.manager.Update(ctx, original, edited)
			return err
		}, nil)
	}, a.mainWindow)
	d.Resize(fyne.NewSize(400, 0))
	d.Show()
}

// handleDelete removes the selected candidate after confirmation
func (a *App) handleDelete() {
	if a.selected == nil || !a.selected.HasID() {
		return
	}
	target := *a.selected

	dialog.ShowConfirm("Delete Candidate", fmt.Sprintf("Delete %s?", target.FullName()), func(confirmed bool) {
		if !confirmed {
			return
		}
		a.runAsync("delete", func(ctx context.Context) error {
			return a.manager.Delete(ctx, *target.ID)
		}, nil)
	}, a.mainWindow)
}

// handleExport handles exporting the current list to Excel
func (a *App) handleExport() {
	candidates := a.manager.Candidates()
	if len(candidates) == 0 {
		dialog.ShowError(fmt.Errorf("no candidates to export"), a.mainWindow)
		return
	}

	d := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		if uc == nil {
			return // User canceled
		}
		defer uc.Close()

		written, err := export.ExportCandidates(candidates, uc.URI().Path())
		if err != nil {
			dialog.ShowError(fmt.Errorf("failed to export: %w", err), a.mainWindow)
			return
		}

		a.logger.Info("Candidates exported", "path", written, "count", len(candidates))
		dialog.ShowInformation("Success", "Candidates exported successfully to "+filepath.Base(written), a.mainWindow)
	}, a.mainWindow)
	d.SetFileName(export.DefaultFileName(time.Now()))
	if loc, err := exportLocation(a.config.ExportDir); err == nil {
		d.SetLocation(loc)
	} else {
		a.logger.Debug("Export directory unavailable", "dir", a.config.ExportDir, "err", err)
	}
	d.Show()
}

// exportLocation resolves the configured export directory for the save dialog
func exportLocation(dir string) (fyne.ListableURI, error) {
	if dir == "" {
		return nil, fmt.Errorf("no export directory configured")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}
	return storage.ListerForURI(storage.NewFileURI(abs))
}

// runAsync runs a manager call off the UI goroutine. Transport failures are
// rendered through the manager's error flag; anything else is shown as an alert.
func (a *App) runAsync(op string, fn func(ctx context.Context) error, done func()) {
	go func() {
		ctx, cancel := contextWithTimeout(a.config.RequestTimeout())
		defer cancel()

		err := fn(ctx)
		if err != nil {
			a.logger.Debug("Operation failed", "op", op, "err", err)
		}

		fyne.Do(func() {
			if done != nil {
				done()
			}
			if err != nil && !errors.Is(err, client.ErrRequestFailed) {
				dialog.ShowInformation("Cannot "+op+" candidate", alertText(err), a.mainWindow)
			}
		})
	}()
}

// contextWithTimeout returns a background context, bounded when timeout > 0
func contextWithTimeout(timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), timeout)
}

// alertText turns ingestion and form errors into a user-facing message
func alertText(err error) string {
	switch {
	case errors.Is(err, ingestion.ErrInvalidFileType):
		return ingestion.ErrInvalidFileType.Error() + "."
	case errors.Is(err, ingestion.ErrMissingHeaders):
		return "The Excel file must contain the headers: seniority, years, availability.\n" + err.Error()
	case errors.Is(err, ingestion.ErrInvalidRowCount):
		return "The Excel file must contain exactly one header row and one data row.\n" + err.Error()
	}
	return err.Error()
}
