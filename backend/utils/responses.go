package utils

import "github.com/gofiber/fiber/v2"

// Success sends the conventional {success, message, ...payload} envelope.
func Success(c *fiber.Ctx, status int, message string, payload fiber.Map) error {
	body := fiber.Map{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range payload {
		body[k] = v
	}
	return c.Status(status).JSON(body)
}

// Fail sends an error envelope with an explicit status code.
func Fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

// FailErr maps a sentinel error onto its HTTP status. The error message is
// passed through to the caller as-is.
func FailErr(c *fiber.Ctx, err error) error {
	return Fail(c, ErrorStatus(err), err.Error())
}
