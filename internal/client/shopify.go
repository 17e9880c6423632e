package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"countdowntimer/internal/misc"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

var ErrShopify = errors.New("Shopify error")
var ErrShopifyUnauthorized = errors.New("Shopify unauthorized")

const shopifyAPIVersion = "2024-01"

const productCacheTTL = 5 * time.Minute

// Product is the slice of an Admin API product the timer form's product
// picker needs.
type Product struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Handle string `json:"handle"`
	Status string `json:"status"`
}

type shopifyProductsResponse struct {
	Products []Product `json:"products"`
}

// ShopifyListProducts fetches the shop's products for the specific-product
// targeting picker. Results are cached per shop so repeated form loads do not
// hammer the Admin API.
func (c Client) ShopifyListProducts(ctx context.Context, shop string, accessToken string) ([]Product, error) {
	cacheKey := "SLP-" + shop
	if c.Redis != nil {
		cached, err := c.Redis.Get(ctx, cacheKey).Result()
		if err == nil {
			c.Logger.Debugf("ShopifyListProducts: Cache found, key: %s", cacheKey)
			var ps []Product
			if err = json.Unmarshal([]byte(cached), &ps); err == nil {
				return ps, nil
			}
			c.Logger.Errorf("ShopifyListProducts: Error unmarshalling cache, key: %s, err: %v", cacheKey, err)
		} else if err != redis.Nil {
			c.Logger.Errorf("ShopifyListProducts: Error getting Redis cache with key: %s, err: %v", cacheKey, err)
		}
	}

	apiURL := fmt.Sprintf("https://%s/admin/api/%s/products.json?limit=250&fields=id,title,handle,status",
		shop, shopifyAPIVersion)
	req, err := newRequest(http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request to URL: %s, err: %v", apiURL, err)
	}
	req = req.WithContext(ctx)
	req.Header.Set("X-Shopify-Access-Token", accessToken)

	c.Logger.Infof("ShopifyListProducts: Sending request to %s", apiURL)
	resp, err := c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: error doing request to URL: %s, err: %v", ErrShopify, apiURL, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(http.MaxBytesReader(nil, resp.Body, 3000*1024))
	if err != nil {
		return nil, fmt.Errorf(
			"error reading Shopify products response body, status: %s, body:\n%s,\nerr: %v",
			resp.Status, misc.BytesLimit(body, 2000), err)
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("%w: status: %s, body:\n%s",
			ErrShopifyUnauthorized, resp.Status, misc.BytesLimit(body, 2000))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status: %s, body:\n%s",
			ErrShopify, resp.Status, misc.BytesLimit(body, 2000))
	}

	var pr shopifyProductsResponse
	if err = json.Unmarshal(body, &pr); err != nil {
		return nil, fmt.Errorf("%w: error unmarshalling products response, body:\n%s,\nerr: %v",
			ErrShopify, misc.BytesLimit(body, 2000), err)
	}

	if c.Redis != nil {
		if cache, err := json.Marshal(pr.Products); err == nil {
			if err = c.Redis.Set(ctx, cacheKey, cache, productCacheTTL).Err(); err != nil {
				c.Logger.Errorf("ShopifyListProducts: Error setting Redis cache with key: %s, err: %v", cacheKey, err)
			}
		}
	}
	return pr.Products, nil
}
