package printing

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/uttaradit-pharmacy/edextemp/internal/models"
	"github.com/uttaradit-pharmacy/edextemp/internal/services"
)

//go:embed templates/*.html
var templateFiles embed.FS

const (
	PageLabel        = "label"
	PageBatchSheet   = "batch_sheet"
	PageBottleLabels = "bottle_labels"
	PageAllLabels    = "all_labels"
)

var pages = []string{PageLabel, PageBatchSheet, PageBottleLabels, PageAllLabels}

type MessageSource interface {
	Messages(language string) map[string]string
}

type Options struct {
	Language       string
	Location       *time.Location
	QRBaseURL      string
	BarcodeBaseURL string
}

type Renderer struct {
	templates map[string]*template.Template
	messages  MessageSource
	images    ImageSource
	options   Options
}

func NewRenderer(messages MessageSource, images ImageSource, options Options) (*Renderer, error) {
	if options.Location == nil {
		options.Location = time.UTC
	}
	templates, err := parsePageTemplates(pages)
	if err != nil {
		return nil, err
	}
	return &Renderer{
		templates: templates,
		messages:  messages,
		images:    images,
		options:   options,
	}, nil
}

func parsePageTemplates(names []string) (map[string]*template.Template, error) {
	templates := make(map[string]*template.Template, len(names))
	for _, name := range names {
		parsed, err := template.New("base").ParseFS(templateFiles, "templates/base.html", "templates/partials.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse print template %s: %w", name, err)
		}
		templates[name] = parsed
	}
	return templates, nil
}

// RenderLabel writes the 6 x 8.5 cm patient label. formula may be the zero
// value when the formula has since been deleted.
func (renderer *Renderer) RenderLabel(ctx context.Context, writer io.Writer, prep models.Prep, formula models.Formula) error {
	messages := renderer.messages.Messages(renderer.options.Language)
	return renderer.execute(writer, PageLabel, renderer.labelView(ctx, messages, prep, formula))
}

func (renderer *Renderer) RenderBatchSheet(writer io.Writer, prep models.Prep, formula models.Formula) error {
	messages := renderer.messages.Messages(renderer.options.Language)
	language := renderer.options.Language
	location := renderer.options.Location

	view := batchSheetView{
		documentView:  documentView{Title: messages["sheet.title"], T: messages},
		FormulaName:   firstNonEmpty(formula.Name, prep.FormulaName),
		Concentration: dashIfEmpty(firstNonEmpty(formula.Concentration, prep.Concentration)),
		LotNo:         prep.LotNo,
		Qty:           prep.Qty,
		Target:        prep.Target,
		PrepDate:      FormatDate(language, prep.Date, location),
		Expiry:        FormatExpiry(language, prep.ExpiryDate, location),
		Ingredients:   services.ParseIngredients(formula.Ingredients),
		Method:        services.ParseMethod(formula.Method),
	}
	return renderer.execute(writer, PageBatchSheet, view)
}

func (renderer *Renderer) RenderBottleLabels(ctx context.Context, writer io.Writer, prep models.Prep, formula models.Formula) error {
	messages := renderer.messages.Messages(renderer.options.Language)
	return renderer.execute(writer, PageBottleLabels, renderer.bottleLabelsView(ctx, messages, prep, formula))
}

// RenderAllLabels prints the patient label followed by the bottle labels.
func (renderer *Renderer) RenderAllLabels(ctx context.Context, writer io.Writer, prep models.Prep, formula models.Formula) error {
	messages := renderer.messages.Messages(renderer.options.Language)
	view := allLabelsView{
		documentView: documentView{Title: messages["print.labels_title"], T: messages},
		Label:        renderer.labelView(ctx, messages, prep, formula),
		Bottle:       renderer.bottleLabelsView(ctx, messages, prep, formula),
	}
	return renderer.execute(writer, PageAllLabels, view)
}

func (renderer *Renderer) labelView(ctx context.Context, messages map[string]string, prep models.Prep, formula models.Formula) labelView {
	language := renderer.options.Language
	location := renderer.options.Location
	return labelView{
		documentView:  documentView{Title: messages["print.title"], T: messages},
		FormulaName:   prep.FormulaName,
		Concentration: dashIfEmpty(prep.Concentration),
		Patient:       labelPatient(prep, messages),
		LotNo:         prep.LotNo,
		PrepDate:      FormatDate(language, prep.Date, location),
		Expiry:        FormatExpiry(language, prep.ExpiryDate, location),
		Storage:       formulaStorage(formula),
		PreparedBy:    prep.PreparedBy,
		Location:      prep.Location,
		Barcode:       renderer.images.Resolve(ctx, BarcodeURL(renderer.options.BarcodeBaseURL, prep.LotNo)),
	}
}

func (renderer *Renderer) bottleLabelsView(ctx context.Context, messages map[string]string, prep models.Prep, formula models.Formula) bottleLabelsView {
	language := renderer.options.Language
	location := renderer.options.Location
	qrURL := QRCodeURL(renderer.options.QRBaseURL, BottleQRPayload(prep.LotNo, prep.Date, prep.ExpiryDate))

	// Every label of a prep shares one QR code, so it is resolved once.
	label := bottleLabel{
		Name:       bottleName(prep, formula),
		PrepDate:   FormatDate(language, prep.Date, location),
		Expiry:     FormatExpiry(language, prep.ExpiryDate, location),
		PreparedBy: prep.PreparedBy,
		Storage:    formulaStorage(formula),
		QRCode:     renderer.images.Resolve(ctx, qrURL),
	}
	return bottleLabelsView{
		documentView: documentView{Title: messages["print.labels_title"], T: messages},
		Pages:        paginateBottleLabels(label, prep.Qty),
	}
}

func (renderer *Renderer) execute(writer io.Writer, page string, view any) error {
	parsed, ok := renderer.templates[page]
	if !ok {
		return fmt.Errorf("print template %s not found", page)
	}
	if err := parsed.ExecuteTemplate(writer, "base", view); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
