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
	EngineNameSamsClub = "sams-club"

	samsClubSearchEndpoint  = "https://www.samsclub.com/api/node/vivaldi/v1/products/search/"
	samsClubProductEndpoint = "https://www.samsclub.com/api/node/vivaldi/v1/products/"
)

// SamsClubEngine queries the Sam's Club product search API.
type SamsClubEngine struct {
	client   *http.Client
	logger   zerolog.Logger
	endpoint string
}

func NewSamsClubEngine(client *http.Client, logger zerolog.Logger) *SamsClubEngine {
	return &SamsClubEngine{
		client:   client,
		logger:   logger,
		endpoint: samsClubSearchEndpoint,
	}
}

func (e *SamsClubEngine) Name() string { return EngineNameSamsClub }

type samsClubSearchResponse struct {
	Payload struct {
		Records []struct {
			ProductID        string `json:"productId"`
			ProductName      string `json:"productName"`
			BrandName        string `json:"brandName"`
			LongDescription  string `json:"longDescription"`
			ShortDescription string `json:"shortDescription"`
			Keywords         string `json:"keywords"`
			ListImage        string `json:"listImage"`
			SKUOptions       []struct {
				UPC string `json:"upc"`
			} `json:"skuOptions"`
		} `json:"records"`
	} `json:"payload"`
}

func (e *SamsClubEngine) Search(ctx context.Context, queryText string) ([]snack.Snack, error) {
	e.logger.Info().Str("engine", EngineNameSamsClub).Str("query", queryText).Msg("searching catalog")

	query := url.Values{}
	query.Set("sourceType", "1")
	query.Set("selectedFilter", "all")
	query.Set("sortKey", "relevance")
	query.Set("sortOrder", "1")
	query.Set("offset", "0")
	query.Set("limit", "48")
	query.Set("searchTerm", queryText)
	query.Set("clubId", "6365")

	var response samsClubSearchResponse
	if err := fetchJSON(ctx, e.client, http.MethodGet, e.endpoint, query, nil, &response); err != nil {
		return nil, err
	}

	records := response.Payload.Records
	snacks := make([]snack.Snack, 0, len(records))
	for _, record := range records {
		// Names carry sizing suffixes like "(2 pk.)"; strip them.
		name := strings.TrimSpace(strings.SplitN(record.ProductName, "(", 2)[0])
		if name == "" {
			continue
		}

		brand := strings.TrimSpace(record.BrandName)
		if brand == "" {
			brand = name
		}

		description := record.LongDescription
		if description == "" {
			description = record.ShortDescription
		}

		tags := []string{record.ProductName}
		if record.Keywords != "" {
			tags = tags[:0]
			for _, keyword := range strings.Split(record.Keywords, ",") {
				if trimmed := strings.TrimSpace(keyword); trimmed != "" {
					tags = append(tags, trimmed)
				}
			}
		}

		var upc string
		if len(record.SKUOptions) > 0 {
			upc = record.SKUOptions[0].UPC
		}

		imageURL := record.ListImage
		if imageURL != "" && strings.HasPrefix(imageURL, "//") {
			imageURL = "https:" + imageURL
		}

		snacks = append(snacks, snack.Snack{
			Name:        name,
			Brand:       brand,
			Description: description,
			Tags:        tags,
			ImageURL:    imageURL,
			UPC:         upc,
			ProductURLs: map[string]string{
				"samsClubId":     record.ProductID,
				"samsClubApiUrl": samsClubProductEndpoint + record.ProductID,
			},
			SourceEngine: EngineNameSamsClub,
		})
	}

	e.logger.Debug().Str("engine", EngineNameSamsClub).Str("query", queryText).Int("count", len(snacks)).Msg("catalog search finished")
	return snacks, nil
}
