// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/mediaops/aws-go-video-overlay/internal/cloud"
	"github.com/mediaops/aws-go-video-overlay/internal/core/model"
	"github.com/mediaops/aws-go-video-overlay/internal/core/workflow"
	"github.com/mediaops/aws-go-video-overlay/internal/telemetry"
)

func main() {
	telemetry.SetupLogging()
	slog.Info("Logging initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config := GetConfig()

	otelShutdown, err := telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		slog.Error("Failed to setup OpenTelemetry", "error", err)
		log.Fatal(err)
	}
	slog.Info("Tracing initialized")

	InitState(ctx)
	slog.Info("Initialized State")

	r := gin.Default()

	// Add OpenTelemetry middleware
	r.Use(otelgin.Middleware("video-overlay-server"))

	// Permissive CORS keeps local frontend development friction-free.
	r.Use(cors.Default())

	apiV1 := r.Group("/api/v1")
	{
		JobRouter(apiV1)
		ArtifactRouter(apiV1)
		FileUpload(apiV1)
	}

	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to listen: ", "error", err)
		}
	}()
	slog.Info("Server Ready on port 8080")

	// Wait for an interrupt signal to gracefully shut down the server.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutdown Server ...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server Shutdown Failed:", "error", err)
	}
	if err := otelShutdown(shutdownCtx); err != nil {
		slog.Error("Telemetry Shutdown Failed:", "error", err)
	}

	log.Println("Server exiting")
}

// JobRouter sets up the routes for starting and inspecting overlay runs.
func JobRouter(r *gin.RouterGroup) {
	jobs := r.Group("/jobs")
	{
		jobs.POST("", func(c *gin.Context) {
			var request struct {
				Video string `json:"video" binding:"required"`
				Kind  string `json:"kind"`
			}
			if err := c.ShouldBindJSON(&request); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			kind := model.JobKind(request.Kind)
			switch kind {
			case model.JobKindLabel, model.JobKindPerson, model.JobKindCelebrity:
			case "":
				kind = model.JobKindLabel
			default:
				c.JSON(http.StatusBadRequest, gin.H{"error": "unknown job kind: " + request.Kind})
				return
			}

			video := &cloud.S3Object{
				Bucket:   state.config.Storage.InputBucket,
				Name:     request.Video,
				MIMEType: "video/mp4",
			}
			// The run outlives this request: derive it from the server
			// root context, which net/http never cancels on response.
			pipeline := workflow.NewOverlayPipeline(state.config, state.cloud, kind)
			run := RunJob(state.ctx, pipeline, video, kind)
			c.JSON(http.StatusAccepted, run)
		})

		jobs.GET("", func(c *gin.Context) {
			c.JSON(http.StatusOK, state.jobs.List())
		})

		jobs.GET("/:id", func(c *gin.Context) {
			run := state.jobs.Get(c.Param("id"))
			if run == nil {
				c.Status(http.StatusNotFound)
				return
			}
			c.JSON(http.StatusOK, run)
		})
	}
}

// ArtifactRouter sets up the routes for listing published artifacts and
// minting time-limited download URLs for them.
func ArtifactRouter(r *gin.RouterGroup) {
	artifacts := r.Group("/artifacts")
	{
		artifacts.GET("", func(c *gin.Context) {
			out, err := state.artifactService.List(c)
			if err != nil {
				log.Printf("Error listing artifacts: %v\n", err)
				c.Status(http.StatusInternalServerError)
				return
			}
			c.JSON(http.StatusOK, out)
		})

		artifacts.GET("/url", func(c *gin.Context) {
			key := c.Query("key")
			if len(key) == 0 {
				c.Status(http.StatusBadRequest)
				return
			}
			// URLs are valid for 15 minutes.
			signedURL, err := state.artifactService.GenerateSignedURL(c, key, 15*time.Minute)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate download URL"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"url": signedURL})
		})
	}
}

// FileUpload sets up the route for handling video uploads into the input
// bucket. The payload is sniffed with filetype so a mislabeled upload never
// reaches Rekognition.
func FileUpload(r *gin.RouterGroup) {
	upload := r.Group("/uploads")
	{
		upload.POST("", func(c *gin.Context) {
			form, err := c.MultipartForm()
			if err != nil {
				c.String(http.StatusBadRequest, "get form err: %s", err.Error())
				return
			}
			files := form.File["files"]

			for _, file := range files {
				handle, err := file.Open()
				if err != nil {
					c.String(http.StatusBadRequest, "upload file err: %s", err.Error())
					return
				}
				head := make([]byte, 261)
				n, _ := handle.Read(head)
				if _, err := handle.Seek(0, 0); err != nil {
					_ = handle.Close()
					c.Status(http.StatusInternalServerError)
					return
				}

				kind, err := filetype.Match(head[:n])
				if err != nil || kind != matchers.TypeMp4 {
					_ = handle.Close()
					c.String(http.StatusBadRequest, "file %s is not an mp4 video", file.Filename)
					return
				}

				_, err = state.cloud.S3Client.PutObject(c, &s3.PutObjectInput{
					Bucket:      aws.String(state.config.Storage.InputBucket),
					Key:         aws.String(file.Filename),
					Body:        handle,
					ContentType: aws.String(kind.MIME.Value),
				})
				if closeErr := handle.Close(); closeErr != nil {
					log.Printf("failed to close upload handle: %v\n", closeErr)
				}
				if err != nil {
					c.String(http.StatusInternalServerError, "write file to bucket err: %s", err.Error())
					return
				}
			}
			c.String(http.StatusOK, "Uploaded successfully %d files.", len(files))
		})
	}
}
