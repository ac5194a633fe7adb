package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/eskro/backend/internal/config"
	"github.com/eskro/backend/internal/models"
)

func NewClient(cfg *config.Config) (*elasticsearch.Client, error) {
	esCfg := elasticsearch.Config{
		Addresses: []string{cfg.ESURL},
		Username:  cfg.ESUser,
		Password:  cfg.ESPassword,
	}

	client, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch error: %s: %s", res.Status(), body)
	}

	return client, nil
}

// NewsDoc is the shape of a news item in the search index.
type NewsDoc struct {
	ID       uint     `json:"id"`
	Title    string   `json:"title"`
	MinText  string   `json:"min_text"`
	Keywords []string `json:"keywords"`
	NewsDate string   `json:"news_date"`
}

func NewsDocFrom(n *models.News) NewsDoc {
	return NewsDoc{
		ID:       n.ID,
		Title:    n.Title,
		MinText:  n.MinText,
		Keywords: n.Keywords,
		NewsDate: n.NewsDate.Format("2006-01-02"),
	}
}

func IndexNews(ctx context.Context, client *elasticsearch.Client, index string, doc NewsDoc) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	res, err := client.Index(
		index,
		bytes.NewReader(data),
		client.Index.WithContext(ctx),
		client.Index.WithDocumentID(strconv.FormatUint(uint64(doc.ID), 10)),
	)
	if err != nil {
		return fmt.Errorf("index news: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index news: %s", res.Status())
	}
	return nil
}

func DeleteNews(ctx context.Context, client *elasticsearch.Client, index string, id uint) error {
	res, err := client.Delete(
		index,
		strconv.FormatUint(uint64(id), 10),
		client.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("delete news: %w", err)
	}
	defer res.Body.Close()
	// 404 just means the document was never indexed.
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete news: %s", res.Status())
	}
	return nil
}
