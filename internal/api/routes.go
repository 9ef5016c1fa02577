package api

import (
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(app *fiber.App, handler *Handler) {
	app.Use(RequestID())
	app.Use(ErrorHandler())

	app.Get("/health", handler.HealthCheck)
	app.Get("/ready", handler.ReadinessCheck)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	v1 := app.Group("/api/v1")
	v1.Use(PrometheusMiddleware())

	instruments := v1.Group("/instruments")
	instruments.Get("/", handler.ListInstruments)
	instruments.Post("/", handler.CreateInstrument)
	instruments.Get("/cheapest", handler.Cheapest)
	instruments.Get("/most-expensive", handler.MostExpensive)
	instruments.Get("/:ticker", handler.GetInstrument)
	instruments.Post("/:ticker/prices", handler.AddPrice)
	instruments.Get("/:ticker/advice", handler.GetAdvice)
	instruments.Get("/:ticker/archive", handler.InstrumentArchive)

	sectors := v1.Group("/sectors")
	sectors.Get("/", handler.ListSectors)
	sectors.Get("/:sector/average", handler.SectorAverage)

	feed := v1.Group("/news")
	feed.Get("/", handler.ListNews)
	feed.Post("/", handler.PublishNews)
	feed.Post("/extract", handler.ExtractNews)
	feed.Post("/sort", handler.SortNews)
	feed.Get("/stats", handler.NewsStats)
	feed.Get("/tape", handler.NewsTape)
	feed.Get("/archive", handler.NewsArchive)

	snapshot := v1.Group("/snapshot")
	snapshot.Get("/", handler.GetSnapshot)
	snapshot.Post("/save", handler.SaveSnapshot)
	snapshot.Post("/restore", handler.RestoreSnapshot)
}
