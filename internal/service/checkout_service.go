package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/flamexyy/bloemige-storefront/internal/commerce"
	"github.com/flamexyy/bloemige-storefront/internal/entity"
)

var (
	// ErrEmptyCart means checkout was attempted with no items. Callers
	// recover by doing nothing.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrNoCheckoutURL means the backend created a cart but returned no
	// usable URL; the checkout attempt is a hard failure.
	ErrNoCheckoutURL = errors.New("checkout returned no url")
)

const variantGIDPrefix = "gid://shopify/ProductVariant/"

// CheckoutGateway is the slice of the commerce backend this service needs.
type CheckoutGateway interface {
	CreateCart(ctx context.Context, lines []commerce.CartLine) (*commerce.CreatedCart, error)
}

// CartReader reads a session's cart items.
type CartReader interface {
	Items(ctx context.Context, cartID string) []entity.CartItem
}

// CheckoutLine is one requested checkout line.
type CheckoutLine struct {
	VariantID string
	Quantity  int
}

// CheckoutService converts cart lines into a remote checkout and rewrites
// the returned URL onto the storefront's public checkout domain.
type CheckoutService struct {
	gateway      CheckoutGateway
	carts        CartReader
	publicDomain string
	log          *logrus.Logger
}

func NewCheckoutService(gateway CheckoutGateway, carts CartReader, publicDomain string, log *logrus.Logger) *CheckoutService {
	return &CheckoutService{
		gateway:      gateway,
		carts:        carts,
		publicDomain: publicDomain,
		log:          log,
	}
}

// CreateCheckout builds a checkout from the session's current cart.
func (s *CheckoutService) CreateCheckout(ctx context.Context, cartID string) (string, error) {
	items := s.carts.Items(ctx, cartID)
	lines := make([]CheckoutLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, CheckoutLine{VariantID: item.VariantID, Quantity: item.Quantity})
	}
	return s.CreateCheckoutFromLines(ctx, lines)
}

// CreateCheckoutFromLines creates one remote cart for all lines in a single
// mutation and returns its public checkout URL. Two calls with the same
// lines create two independent remote carts; they are ephemeral and cheap
// server-side. Backend validation errors pass through verbatim and are not
// retried.
func (s *CheckoutService) CreateCheckoutFromLines(ctx context.Context, lines []CheckoutLine) (string, error) {
	if len(lines) == 0 {
		return "", ErrEmptyCart
	}

	cartLines := make([]commerce.CartLine, 0, len(lines))
	for _, line := range lines {
		cartLines = append(cartLines, commerce.CartLine{
			MerchandiseID: NormalizeMerchandiseID(line.VariantID),
			Quantity:      line.Quantity,
		})
	}

	created, err := s.gateway.CreateCart(ctx, cartLines)
	if err != nil {
		return "", err
	}
	if created.CheckoutURL == "" {
		return "", ErrNoCheckoutURL
	}

	url := RewriteCheckoutURL(created.CheckoutURL, s.publicDomain)
	s.log.WithFields(logrus.Fields{
		"remote_cart_id": created.ID,
		"lines":          len(lines),
	}).Info("Checkout created")
	return url, nil
}

// NormalizeMerchandiseID converts a bare variant id into the backend's
// global-identifier format; ids already in that format pass through.
func NormalizeMerchandiseID(id string) string {
	if strings.HasPrefix(id, "gid://") {
		return id
	}
	return variantGIDPrefix + id
}

// checkoutURLPattern matches the backend's checkout URL shape:
// https://<internal-domain>/cart/c/<token>[?key=<key>].
var checkoutURLPattern = regexp.MustCompile(`^https?://[^/]+(/cart/c/[^/?#]+)(\?.*)?$`)

// RewriteCheckoutURL moves a backend checkout URL onto the public checkout
// domain, keeping the token path and any query verbatim. A URL that does
// not match the expected shape is returned unchanged.
func RewriteCheckoutURL(rawURL, publicDomain string) string {
	if publicDomain == "" {
		return rawURL
	}
	m := checkoutURLPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return rawURL
	}
	return "https://" + publicDomain + m[1] + m[2]
}
