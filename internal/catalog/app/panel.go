package app

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/dejobratic/storefront/internal/catalog/domain"
)

var recentlyViewedTemplate = template.Must(template.New("recently_viewed").Parse(
	`{{range .}}<div class="col-md-4 mb-3">
  <div class="card h-100 product-card" data-product-id="{{.ID}}">
    {{if .ImageURL}}<img src="{{.ImageURL}}" class="card-img-top" alt="{{.Name}}">{{end}}
    <div class="card-body">
      <h6 class="card-title"><a href="{{.URL}}">{{.Name}}</a></h6>
      <p class="card-text text-danger fw-bold">{{.Price}} {{.Currency}}</p>
    </div>
  </div>
</div>
{{end}}`))

func renderPanel(products []domain.Product) (string, error) {
	if len(products) == 0 {
		return "", nil
	}

	var buf bytes.Buffer
	if err := recentlyViewedTemplate.Execute(&buf, products); err != nil {
		return "", fmt.Errorf("render recently viewed panel: %w", err)
	}
	return buf.String(), nil
}
