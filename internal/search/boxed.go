package search

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"snax.fit/snax/internal/snack"
)

const (
	EngineNameBoxed = "boxed"

	boxedSearchEndpoint = "https://www.boxed.com/api/search/"
)

// BoxedEngine queries the Boxed bulk-goods search API.
type BoxedEngine struct {
	client   *http.Client
	logger   zerolog.Logger
	endpoint string
}

func NewBoxedEngine(client *http.Client, logger zerolog.Logger) *BoxedEngine {
	return &BoxedEngine{
		client:   client,
		logger:   logger,
		endpoint: boxedSearchEndpoint,
	}
}

func (e *BoxedEngine) Name() string { return EngineNameBoxed }

type boxedSearchResponse struct {
	Data struct {
		ProductListEntities []struct {
			Name   string `json:"name"`
			Images []struct {
				OriginalBase string `json:"originalBase"`
			} `json:"images"`
			VariantObject struct {
				UPC     string `json:"upc"`
				GID     string `json:"gid"`
				Product struct {
					Brand            string   `json:"brand"`
					LongDescription  string   `json:"longDescription"`
					ShortDescription string   `json:"shortDescription"`
					Keywords         []string `json:"keywords"`
				} `json:"product"`
			} `json:"variantObject"`
		} `json:"productListEntities"`
	} `json:"data"`
}

func (e *BoxedEngine) Search(ctx context.Context, queryText string) ([]snack.Snack, error) {
	searchURL := e.endpoint + url.PathEscape(strings.TrimSpace(queryText))
	e.logger.Info().Str("engine", EngineNameBoxed).Str("query", queryText).Msg("searching catalog")

	var response boxedSearchResponse
	if err := fetchJSON(ctx, e.client, http.MethodGet, searchURL, nil, nil, &response); err != nil {
		return nil, err
	}

	products := response.Data.ProductListEntities
	snacks := make([]snack.Snack, 0, len(products))
	for _, product := range products {
		if strings.TrimSpace(product.Name) == "" {
			continue
		}

		description := product.VariantObject.Product.LongDescription
		if description == "" {
			description = product.VariantObject.Product.ShortDescription
		}

		var imageURL string
		if len(product.Images) > 0 {
			imageURL = product.Images[0].OriginalBase
		}

		snacks = append(snacks, snack.Snack{
			Name:         product.Name,
			Brand:        product.VariantObject.Product.Brand,
			Description:  description,
			Tags:         append([]string(nil), product.VariantObject.Product.Keywords...),
			ImageURL:     imageURL,
			UPC:          product.VariantObject.UPC,
			ProductURLs:  map[string]string{"boxedId": product.VariantObject.GID},
			SourceEngine: EngineNameBoxed,
		})
	}

	e.logger.Debug().Str("engine", EngineNameBoxed).Str("query", queryText).Int("count", len(snacks)).Msg("catalog search finished")
	return snacks, nil
}
