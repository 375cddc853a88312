package quran

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/metafates/gache"
	"github.com/tilawah-cli/tilawah/filesystem"
	"github.com/tilawah-cli/tilawah/log"
	"github.com/tilawah-cli/tilawah/network"
	"github.com/tilawah-cli/tilawah/util"
	"github.com/tilawah-cli/tilawah/where"
)

// DefaultAPIURL is the public equran.id v2 API.
const DefaultAPIURL = "https://equran.id/api/v2"

// ErrSurahNotFound is returned for numbers outside 1..114.
var ErrSurahNotFound = errors.New("surah not found")

// Client reads surahs from the API and keeps them in the on-disk cache.
type Client struct {
	baseURL string
	http    *http.Client
	index   *gache.Cache[[]*Surah]
	details *cacher[int, *Surah]
}

// NewClient creates a client for baseURL whose cached responses live for lifetime.
func NewClient(baseURL string, lifetime time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    network.Client,
		index: gache.New[[]*Surah](&gache.Options{
			Path:       where.Surahs(),
			Lifetime:   lifetime,
			FileSystem: &filesystem.GacheFs{},
		}),
		details: newCacher[int, *Surah](where.SurahDetails(), lifetime),
	}
}

type envelope[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// Surahs returns the index of all surahs, without verses.
func (c *Client) Surahs(ctx context.Context) ([]*Surah, error) {
	if cached, expired, err := c.index.Get(); err == nil && !expired && len(cached) > 0 {
		return cached, nil
	}

	var surahs []*Surah
	if err := c.get(ctx, "/surat", &surahs); err != nil {
		return nil, fmt.Errorf("list surahs: %w", err)
	}

	if err := c.index.Set(surahs); err != nil {
		log.Warnf("quran: cache surah index: %v", err)
	}
	return surahs, nil
}

// Surah returns surah number with all of its verses.
func (c *Client) Surah(ctx context.Context, number int) (*Surah, error) {
	if number < 1 || number > SurahCount {
		return nil, fmt.Errorf("%w: %d", ErrSurahNotFound, number)
	}

	if cached, ok := c.details.Get(number).Get(); ok {
		return cached, nil
	}

	var surah *Surah
	if err := c.get(ctx, "/surat/"+strconv.Itoa(number), &surah); err != nil {
		return nil, fmt.Errorf("get surah %d: %w", number, err)
	}
	if surah == nil {
		return nil, fmt.Errorf("%w: %d", ErrSurahNotFound, number)
	}

	if err := c.details.Set(number, surah); err != nil {
		log.Warnf("quran: cache surah %d: %v", number, err)
	}
	return surah, nil
}

func (c *Client) get(ctx context.Context, path string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	log.Debugf("quran: GET %s", req.URL)
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer util.Ignore(resp.Body.Close)

	if resp.StatusCode == http.StatusNotFound {
		return ErrSurahNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	body := envelope[any]{Data: data}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if body.Code != 0 && body.Code != http.StatusOK {
		return fmt.Errorf("api error %d: %s", body.Code, body.Message)
	}
	return nil
}
