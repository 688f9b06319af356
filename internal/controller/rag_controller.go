package controller

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"reasonmed-be/internal/dto"
	"reasonmed-be/internal/pkg/serverutils"
	"reasonmed-be/internal/service"
	"reasonmed-be/pkg/rag"
)

type IRagController interface {
	RegisterRoutes(r fiber.Router)
	Query(ctx *fiber.Ctx) error
	QueryStream(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
}

type ragController struct {
	ragService service.IRagService
}

func NewRagController(ragService service.IRagService) IRagController {
	return &ragController{
		ragService: ragService,
	}
}

func (c *ragController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/rag/v1")
	h.Get("health", c.Health)
	h.Get("stats", c.Stats)
	h.Post("query", c.Query)
	h.Post("query/stream", c.QueryStream)
}

func (c *ragController) Query(ctx *fiber.Ctx) error {
	var req dto.QueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.ragService.Query(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

// QueryStream renders the pipeline's event sequence as Server-Sent Events:
// one retrieved event, then chunk events, then complete (or error). A client
// disconnect surfaces as a flush failure and cancels the pipeline run.
func (c *ragController) QueryStream(ctx *fiber.Ctx) error {
	var req dto.QueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	ctx.Set("Content-Type", "text/event-stream")
	ctx.Set("Cache-Control", "no-cache")
	ctx.Set("Connection", "keep-alive")

	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		// The fiber request context is gone once the handler returns, so the
		// stream gets its own cancellable context tied to write failures.
		streamCtx, cancel := context.WithCancel(context.Background())
		defer cancel()

		for event := range c.ragService.QueryStream(streamCtx, &req) {
			if !writeSSEEvent(w, event) {
				cancel()
				return
			}
		}
	}))

	return nil
}

func writeSSEEvent(w *bufio.Writer, event rag.StreamEvent) bool {
	var data interface{}
	switch event.Kind {
	case rag.StreamEventRetrieved:
		data = dto.StreamRetrievedEvent{
			NumDocuments: event.Retrieved.NumDocuments,
			Documents:    event.Retrieved.Documents,
		}
	case rag.StreamEventChunk:
		data = event.Chunk
	case rag.StreamEventError:
		data = event.Err.Error()
	case rag.StreamEventComplete:
		data = struct{}{}
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return false
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Kind, payload); err != nil {
		return false
	}
	return w.Flush() == nil
}

func (c *ragController) Health(ctx *fiber.Ctx) error {
	res, err := c.ragService.Health(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *ragController) Stats(ctx *fiber.Ctx) error {
	res, err := c.ragService.Stats(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}
