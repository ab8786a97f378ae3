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
	EngineNameShipt = "shipt"

	shiptSearchEndpoint = "https://api.shipt.com/search/v2/search/"
)

// ShiptEngine queries the Shipt grocery delivery search API.
type ShiptEngine struct {
	client   *http.Client
	logger   zerolog.Logger
	endpoint string
}

func NewShiptEngine(client *http.Client, logger zerolog.Logger) *ShiptEngine {
	return &ShiptEngine{
		client:   client,
		logger:   logger,
		endpoint: shiptSearchEndpoint,
	}
}

func (e *ShiptEngine) Name() string { return EngineNameShipt }

type shiptSearchRequest struct {
	UserID          int    `json:"user_id"`
	StoreID         int    `json:"store_id"`
	MetroID         int    `json:"metro_id"`
	StoreLocationID int    `json:"store_location_id"`
	Query           string `json:"query"`
	Featured        bool   `json:"featured"`
	SectionID       int    `json:"section_id"`
}

type shiptSearchResponse struct {
	Hits []struct {
		DisplayName string   `json:"display_name"`
		Name        string   `json:"name"`
		BrandName   string   `json:"brand_name"`
		Description string   `json:"description"`
		Keywords    []string `json:"keywords"`
		Categories  []struct {
			Name string `json:"name"`
		} `json:"categories"`
		Image struct {
			URL string `json:"url"`
		} `json:"image"`
		UPCs      []string `json:"upcs"`
		ProductID string   `json:"product_id"`
	} `json:"hits"`
}

func (e *ShiptEngine) Search(ctx context.Context, queryText string) ([]snack.Snack, error) {
	e.logger.Info().Str("engine", EngineNameShipt).Str("query", queryText).Msg("searching catalog")

	query := url.Values{}
	query.Set("bucket_number", "13")
	query.Set("white_label_key", "shipt")

	// Store selection pins results to one concrete storefront; without it
	// the API returns nothing.
	body := shiptSearchRequest{
		UserID:          2168807,
		StoreID:         6,
		MetroID:         31,
		StoreLocationID: 1235,
		Query:           queryText,
		Featured:        true,
		SectionID:       1,
	}

	var response shiptSearchResponse
	if err := fetchJSON(ctx, e.client, http.MethodPost, e.endpoint, query, body, &response); err != nil {
		return nil, err
	}

	snacks := make([]snack.Snack, 0, len(response.Hits))
	for _, hit := range response.Hits {
		name := hit.DisplayName
		if name == "" {
			name = hit.Name
		}
		if strings.TrimSpace(name) == "" {
			continue
		}

		tags := append([]string(nil), hit.Keywords...)
		for _, category := range hit.Categories {
			if category.Name != "" {
				tags = append(tags, category.Name)
			}
		}

		var upc string
		if len(hit.UPCs) > 0 {
			upc = hit.UPCs[0]
		}

		snacks = append(snacks, snack.Snack{
			Name:         name,
			GenericName:  hit.Name,
			Brand:        hit.BrandName,
			Description:  hit.Description,
			Tags:         tags,
			ImageURL:     hit.Image.URL,
			UPC:          upc,
			ProductURLs:  map[string]string{"shiptId": hit.ProductID},
			SourceEngine: EngineNameShipt,
		})
	}

	e.logger.Debug().Str("engine", EngineNameShipt).Str("query", queryText).Int("count", len(snacks)).Msg("catalog search finished")
	return snacks, nil
}
