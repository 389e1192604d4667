// handlers/routes.go
package handlers

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"miniapp-rewards-system/services"
)

var validate = validator.New()

// SetupRoutes wires the rewards API. The handlers stay thin: parse,
// validate, call the engine, map the failure taxonomy onto HTTP statuses.
func SetupRoutes(
	app *fiber.App,
	users *services.UserService,
	catalog *services.CatalogService,
	completions *services.CompletionService,
	referrals *services.ReferralService,
	leaderboard *services.LeaderboardService,
) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Idempotent catalog bootstrap; safe to call from every client start.
	app.Post("/initialize", func(c *fiber.Ctx) error {
		if err := catalog.SeedDefaults(c.Context()); err != nil {
			return failJSON(c, err)
		}
		return c.JSON(fiber.Map{"success": true})
	})

	app.Post("/users", func(c *fiber.Ctx) error {
		var req struct {
			TelegramUserID int64  `json:"telegram_user_id" validate:"required,gt=0"`
			FirstName      string `json:"first_name" validate:"required,max=128"`
			Username       string `json:"username" validate:"max=64"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		if err := validate.Struct(req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		user, err := users.GetOrCreate(c.Context(), req.TelegramUserID, req.FirstName, req.Username)
		if err != nil {
			return failJSON(c, err)
		}
		return c.JSON(user)
	})

	app.Get("/users/:userId", func(c *fiber.Ctx) error {
		userID, err := paramID(c, "userId")
		if err != nil {
			return failJSON(c, err)
		}
		user, err := users.Get(c.Context(), userID)
		if err != nil {
			return failJSON(c, err)
		}
		return c.JSON(user)
	})

	app.Get("/tasks", func(c *fiber.Ctx) error {
		tasks, err := catalog.ListActive(c.Context())
		if err != nil {
			return failJSON(c, err)
		}
		return c.JSON(tasks)
	})

	app.Get("/users/:userId/tasks", func(c *fiber.Ctx) error {
		userID, err := paramID(c, "userId")
		if err != nil {
			return failJSON(c, err)
		}
		list, err := completions.UserTasks(c.Context(), userID)
		if err != nil {
			return failJSON(c, err)
		}
		return c.JSON(list)
	})

	app.Post("/users/:userId/tasks/:taskId/complete", func(c *fiber.Ctx) error {
		userID, err := paramID(c, "userId")
		if err != nil {
			return failJSON(c, err)
		}
		taskID, err := paramID(c, "taskId")
		if err != nil {
			return failJSON(c, err)
		}

		result, err := completions.Complete(c.Context(), userID, taskID)
		if err != nil {
			return failJSON(c, err)
		}
		return c.JSON(fiber.Map{
			"success": true,
			"reward":  result.Reward,
			"user":    result.User,
		})
	})

	app.Post("/referrals", func(c *fiber.Ctx) error {
		var req struct {
			ReferrerID int64 `json:"referrer_id" validate:"required,gt=0"`
			ReferredID int64 `json:"referred_id" validate:"required,gt=0"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		if err := validate.Struct(req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		ok, err := referrals.Process(c.Context(), req.ReferrerID, req.ReferredID)
		if err != nil {
			return failJSON(c, err)
		}
		return c.JSON(fiber.Map{"success": ok})
	})

	app.Get("/users/:userId/referrals", func(c *fiber.Ctx) error {
		userID, err := paramID(c, "userId")
		if err != nil {
			return failJSON(c, err)
		}
		history, err := referrals.History(c.Context(), userID)
		if err != nil {
			return failJSON(c, err)
		}
		return c.JSON(history)
	})

	app.Get("/leaderboard", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "0"))
		entries, err := leaderboard.Top(c.Context(), limit)
		if err != nil {
			return failJSON(c, err)
		}
		return c.JSON(entries)
	})
}

func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, services.ErrInvalidInput
	}
	return id, nil
}

// failJSON maps the engine failure taxonomy onto HTTP statuses. Storage
// failures are the only retryable class and surface as 500.
func failJSON(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrUserNotFound), errors.Is(err, services.ErrTaskNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	case errors.Is(err, services.ErrAlreadyCompleted),
		errors.Is(err, services.ErrAlreadyReferred),
		errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success":   false,
			"error":     "storage failure",
			"retryable": services.IsStorageError(err),
		})
	}
}
