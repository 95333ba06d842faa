package commerce

import (
	"context"

	"github.com/pkg/errors"

	"github.com/flamexyy/bloemige-storefront/internal/entity"
)

const productFields = `
	id
	handle
	title
	description
	options {
		name
		values
	}
	variants(first: 100) {
		edges {
			node {
				id
				title
				selectedOptions {
					name
					value
				}
				price {
					amount
					currencyCode
				}
				compareAtPrice {
					amount
					currencyCode
				}
				quantityAvailable
				availableForSale
			}
		}
	}
	images(first: 20) {
		edges {
			node {
				url
				altText
			}
		}
	}`

const productByHandleQuery = `
query productByHandle($handle: String!) {
	product(handle: $handle) {` + productFields + `
	}
}`

const productsQuery = `
query products($first: Int!) {
	products(first: $first) {
		edges {
			node {` + productFields + `
			}
		}
	}
}`

type selectedOptionNode struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type variantNode struct {
	ID                string               `json:"id"`
	Title             string               `json:"title"`
	SelectedOptions   []selectedOptionNode `json:"selectedOptions"`
	Price             moneyNode            `json:"price"`
	CompareAtPrice    *moneyNode           `json:"compareAtPrice"`
	QuantityAvailable int                  `json:"quantityAvailable"`
	AvailableForSale  bool                 `json:"availableForSale"`
}

type imageNode struct {
	URL     string `json:"url"`
	AltText string `json:"altText"`
}

type productNode struct {
	ID          string `json:"id"`
	Handle      string `json:"handle"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Options     []struct {
		Name   string   `json:"name"`
		Values []string `json:"values"`
	} `json:"options"`
	Variants struct {
		Edges []struct {
			Node variantNode `json:"node"`
		} `json:"edges"`
	} `json:"variants"`
	Images struct {
		Edges []struct {
			Node imageNode `json:"node"`
		} `json:"edges"`
	} `json:"images"`
}

// ErrProductNotFound means the handle resolves to no product.
var ErrProductNotFound = errors.New("product not found")

// ProductByHandle fetches and validates one product. Invalid catalog shapes
// fail here at the boundary, never deep inside resolver logic.
func (c *Client) ProductByHandle(ctx context.Context, handle string) (*entity.Product, error) {
	var data struct {
		Product *productNode `json:"product"`
	}
	if err := c.query(ctx, productByHandleQuery, map[string]any{"handle": handle}, &data); err != nil {
		return nil, err
	}
	if data.Product == nil {
		return nil, ErrProductNotFound
	}
	product, err := decodeProduct(*data.Product)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid product %q", handle)
	}
	return &product, nil
}

// Products fetches the first n catalog products.
func (c *Client) Products(ctx context.Context, first int) ([]entity.Product, error) {
	var data struct {
		Products struct {
			Edges []struct {
				Node productNode `json:"node"`
			} `json:"edges"`
		} `json:"products"`
	}
	if err := c.query(ctx, productsQuery, map[string]any{"first": first}, &data); err != nil {
		return nil, err
	}

	products := make([]entity.Product, 0, len(data.Products.Edges))
	for _, edge := range data.Products.Edges {
		product, err := decodeProduct(edge.Node)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid product %q", edge.Node.Handle)
		}
		products = append(products, product)
	}
	return products, nil
}

func decodeProduct(node productNode) (entity.Product, error) {
	if node.ID == "" || node.Title == "" {
		return entity.Product{}, errors.New("product missing id or title")
	}

	product := entity.Product{
		ID:          node.ID,
		Handle:      node.Handle,
		Title:       node.Title,
		Description: node.Description,
	}
	for _, opt := range node.Options {
		if opt.Name == "" {
			return entity.Product{}, errors.New("product option missing name")
		}
		product.Options = append(product.Options, entity.Option{Name: opt.Name, Values: opt.Values})
	}
	for _, edge := range node.Variants.Edges {
		variant, err := decodeVariant(edge.Node, len(product.Options))
		if err != nil {
			return entity.Product{}, err
		}
		product.Variants = append(product.Variants, variant)
	}
	for _, edge := range node.Images.Edges {
		product.Images = append(product.Images, entity.Image{URL: edge.Node.URL, Alt: edge.Node.AltText})
	}
	return product, nil
}

func decodeVariant(node variantNode, optionCount int) (entity.Variant, error) {
	if node.ID == "" {
		return entity.Variant{}, errors.New("variant missing id")
	}
	if len(node.SelectedOptions) != optionCount {
		return entity.Variant{}, errors.Errorf("variant %s has %d selected options, product has %d", node.ID, len(node.SelectedOptions), optionCount)
	}

	price, err := entity.NewMoney(node.Price.Amount, node.Price.CurrencyCode)
	if err != nil {
		return entity.Variant{}, errors.Wrapf(err, "variant %s price", node.ID)
	}

	variant := entity.Variant{
		ID:                node.ID,
		Title:             node.Title,
		SelectedOptions:   make(map[string]string, len(node.SelectedOptions)),
		Price:             price,
		QuantityAvailable: node.QuantityAvailable,
		AvailableForSale:  node.AvailableForSale,
	}
	if node.QuantityAvailable < 0 {
		variant.QuantityAvailable = 0
	}
	for _, sel := range node.SelectedOptions {
		variant.SelectedOptions[sel.Name] = sel.Value
	}
	if node.CompareAtPrice != nil {
		compareAt, err := entity.NewMoney(node.CompareAtPrice.Amount, node.CompareAtPrice.CurrencyCode)
		if err != nil {
			return entity.Variant{}, errors.Wrapf(err, "variant %s compare-at price", node.ID)
		}
		variant.CompareAtPrice = &compareAt
	}
	return variant, nil
}
