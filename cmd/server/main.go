// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
// *****************************************************************************************************//
// Package main is the entry point for the media intelligence backend server.
//
// This application sets up and runs a web server using the Gin framework. It provides a REST API
// for on-demand media analysis, edit recommendations, and free-text edit commands. The server is
// instrumented with OpenTelemetry for logging, tracing, and metrics.
//
// The main function initializes the application's configuration, sets up logging and telemetry,
// and initializes the application state, including clients for Google Cloud services. It defines
// API routes for analyzing media, requesting edit suggestions, executing edit instructions,
// looking up persisted analysis runs, generating streaming URLs, and uploading files.
//
// The server also manages a background Pub/Sub listener that runs the full analysis pipeline
// whenever a new media file lands in the source Google Cloud Storage bucket.
//
// Functions:
//   - main: The main entry point of the application. It sets up the server, configures routes,
//     initializes services, and handles graceful shutdown.
//   - IntelRouter: Sets up the API routes for analysis, recommendation, editing, record lookup,
//     and signed streaming URLs.
//   - FileUpload: Configures the API endpoint for multipart file uploads into the source bucket.
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/jaycherian/gcp-go-media-intel/internal/telemetry"
)

// main is the primary entry point for the application.
// It orchestrates the setup of logging, telemetry, configuration, cloud services,
// the web server, API routes, and the background listener, and handles graceful
// shutdown on interrupt.
func main() {
	// Initialize structured logging for the application.
	telemetry.SetupLogging()
	slog.Info("Logging initialized")

	// Root context for the application; cancelled on exit.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load application configuration from TOML files.
	config := GetConfig()

	// Initialize OpenTelemetry for distributed tracing and metrics.
	_, err := telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		slog.Error("Failed to setup OpenTelemetry", "error", err)
		log.Fatal(err)
	}
	slog.Info("Tracing initialized")

	// Initialize the application's state, including all service clients.
	InitState(ctx)
	slog.Info("Initialized State")

	// Set up the Gin web server with default middleware.
	r := gin.Default()

	// Trace incoming requests.
	r.Use(otelgin.Middleware("media-intel-server"))

	// Permissive CORS, suitable for development.
	r.Use(cors.Default())

	// Group routes under the "/api/v1" prefix.
	apiV1 := r.Group("/api/v1")
	{
		IntelRouter(apiV1)
		FileUpload(apiV1)
	}

	srv := &http.Server{
		Addr:         ":8080",
		Handler:      r,
		ReadTimeout:  20 * time.Second,
		WriteTimeout: 20 * time.Second,
	}

	// Start the HTTP server without blocking the main thread.
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to listen: ", "error", err)
		}
	}()
	slog.Info("Server Ready on port 8080")

	// Block until an interrupt arrives.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutdown Server ...")

	// Give active requests 5 seconds to complete.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server Shutdown Failed:", "error", err)
	}

	log.Println("Server exiting")
}

// analyzeRequest is the shared request body for the analysis-driven routes.
type analyzeRequest struct {
	MediaUri string `json:"media_uri" binding:"required"`
}

// editRequest carries a free-text edit instruction for a media asset.
type editRequest struct {
	MediaUri string `json:"media_uri" binding:"required"`
	Command  string `json:"command" binding:"required"`
}

// IntelRouter sets up the API routes for the media intelligence operations.
//
// Inputs:
//   - r: A *gin.RouterGroup to which the routes will be added, allowing
//     nesting under a common path prefix (e.g., "/api/v1").
//
// This function defines the following endpoints:
//   - POST /analyze: Runs a full analysis pass over a media URI and returns the normalized result.
//   - POST /recommend: Returns the ordered edit suggestions for a media URI.
//   - POST /edit: Interprets a free-text edit command and returns the resulting media reference.
//   - GET /records/:id: Retrieves one persisted analysis run by its UUID.
//   - GET /records: Lists recent analysis runs for a media URI.
//   - GET /media/stream: Generates a time-limited, signed URL for streaming a media object.
func IntelRouter(r *gin.RouterGroup) {
	// Handler for POST /analyze
	r.POST("/analyze", func(c *gin.Context) {
		var req analyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		out, err := state.intelService.Analyze(c, req.MediaUri)
		if err != nil {
			log.Printf("Error analyzing %s: %v\n", req.MediaUri, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "analysis failed"})
			return
		}
		c.JSON(http.StatusOK, out)
	})

	// Handler for POST /recommend
	r.POST("/recommend", func(c *gin.Context) {
		var req analyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		out, err := state.intelService.Recommend(c, req.MediaUri)
		if err != nil {
			log.Printf("Error recommending for %s: %v\n", req.MediaUri, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "recommendation failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"suggestions": out})
	})

	// Handler for POST /edit
	r.POST("/edit", func(c *gin.Context) {
		var req editRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		out, err := state.intelService.Edit(c, req.Command, req.MediaUri)
		if err != nil {
			log.Printf("Error editing %s: %v\n", req.MediaUri, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "edit failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"media_uri": out})
	})

	// Handler for GET /records/:id
	r.GET("/records/:id", func(c *gin.Context) {
		id := c.Param("id")
		out, err := state.intelService.GetRecord(c, id)
		if err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		c.JSON(http.StatusOK, out)
	})

	// Handler for GET /records?media_uri=<uri>&count=<n>
	r.GET("/records", func(c *gin.Context) {
		mediaUri := c.Query("media_uri")
		if len(mediaUri) == 0 {
			c.Status(http.StatusBadRequest)
			return
		}
		count, err := strconv.Atoi(c.DefaultQuery("count", "5"))
		if err != nil {
			count = 5
		}
		out, err := state.intelService.ListRecords(c, mediaUri, count)
		if err != nil {
			log.Printf("Error listing records for %s: %v\n", mediaUri, err)
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, out)
	})

	// Handler for GET /media/stream?uri=<gs://...>
	// Provides a secure, time-limited URL for clients to stream media content.
	r.GET("/media/stream", func(c *gin.Context) {
		uri := c.Query("uri")
		if len(uri) == 0 {
			c.Status(http.StatusBadRequest)
			return
		}
		signedURL, err := state.intelService.GenerateSignedURL(c, uri)
		if err != nil {
			log.Printf("Error generating signed URL: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate streaming URL"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"url": signedURL})
	})
}

// FileUpload sets up the route for handling file uploads.
//
// Inputs:
//   - r: A *gin.RouterGroup to which the file upload route will be added.
//
// This function configures a POST endpoint at "/uploads" that accepts
// multipart/form-data. Files sent under the "files" form field are saved
// temporarily to local disk and then uploaded to the configured source
// bucket, where the finalize notification triggers the analysis pipeline.
func FileUpload(r *gin.RouterGroup) {
	upload := r.Group("/uploads")
	{
		// Handler for POST /uploads
		upload.POST("", func(c *gin.Context) {
			form, err := c.MultipartForm()
			if err != nil {
				c.String(http.StatusBadRequest, "get form err: %s", err.Error())
				return
			}
			files := form.File["files"]
			bucket := state.cloud.StorageClient.Bucket(state.config.Storage.SourceBucket)

			for _, file := range files {
				localPath := filepath.Join(os.TempDir(), file.Filename)
				if err := c.SaveUploadedFile(file, localPath); err != nil {
					c.String(http.StatusBadRequest, "upload file err: %s", err.Error())
					return
				}

				content, err := os.ReadFile(localPath)
				if err != nil {
					log.Println(err)
					c.Status(http.StatusInternalServerError)
					return
				}
				wc := bucket.Object(file.Filename).NewWriter(c)
				wc.ContentType = "video/mp4"
				if _, err = wc.Write(content); err != nil {
					c.String(http.StatusInternalServerError, "write file to bucket err: %s", err.Error())
					return
				}
				if err := wc.Close(); err != nil {
					log.Printf("failed to close bucket handle: %v\n", err)
				}
				if err := os.Remove(localPath); err != nil {
					log.Printf("failed to remove file from server: %v\n", err)
				}
			}
			c.String(http.StatusOK, "Uploaded successfully %d files.", len(files))
		})
	}
}
