package middleware

import (
	"errors"

	"saeta-access/internal/core/domain"
	"saeta-access/internal/core/services"
	"saeta-access/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Scanner credential headers
const (
	HeaderScannerID  = "X-Scanner-ID"
	HeaderScannerKey = "X-Scanner-Key"
)

// ScannerAuth requires a registered, active scanner. The scanner id and
// location are stored in Locals for the handlers.
func ScannerAuth(scanners *services.ScannerService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scanner, err := scanners.Authenticate(c.UserContext(), c.Get(HeaderScannerID), c.Get(HeaderScannerKey))
		if err != nil {
			if errors.Is(err, domain.ErrUnauthorized) {
				return response.Unauthorized(c, "Unknown or disabled scanner")
			}
			return response.InternalServerError(c, "Failed to authenticate scanner")
		}

		c.Locals(LocalScannerID, scanner.ID)
		c.Locals(LocalScannerLocation, scanner.Location)
		return c.Next()
	}
}
