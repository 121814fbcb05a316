package server

import (
	"commonroom/auth"
	"commonroom/monitoring"
	"commonroom/service"
	"context"
	"errors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"net/http"
	"strings"
	"time"
)

type Server struct {
	service *service.Service
	tokens  *auth.TokenService
	engine  *gin.Engine
}

func NewServer(svc *service.Service, tokens *auth.TokenService, gatherer prometheus.Gatherer, production bool) *Server {
	if production {
		gin.SetMode(gin.ReleaseMode)
	}
	s := &Server{service: svc, tokens: tokens, engine: gin.New()}
	s.engine.Use(requestLogger())
	s.engine.Use(gin.Recovery())

	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if gatherer != nil {
		s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.engine.Group("/api")
	{
		api.POST("/register", s.register)
		api.POST("/login", s.login)

		api.GET("/users", s.getUsers)
		api.GET("/users/:id", s.getUser)
		api.GET("/users/:id/posts", s.getUserPosts)
		api.GET("/users/:id/likes", s.getUserLikedPosts)

		api.GET("/posts", s.getPosts)
		api.GET("/posts/:id", s.getPost)
	}

	authed := api.Group("", s.authenticate)
	{
		authed.POST("/users/:id/follow", s.followClicked)
		authed.DELETE("/me", s.deleteUser)
		authed.PATCH("/me/profile", s.updateProfileDetails)
		authed.GET("/me/feed", s.getFollowingPosts)
		authed.POST("/media/uploads", s.requestMediaUpload)

		authed.POST("/posts", s.createPost)
		authed.DELETE("/posts/:id", s.deletePost)
		authed.POST("/posts/:id/like", s.likePost)
		authed.POST("/posts/:id/dislike", s.dislikePost)
		authed.POST("/posts/:id/comments", s.createComment)
		authed.DELETE("/posts/:id/comments/:commentId", s.deleteComment)
		authed.POST("/posts/:id/comments/:commentId/like", s.likeComment)
		authed.POST("/posts/:id/comments/:commentId/dislike", s.dislikeComment)
	}
}

// Handler returns the router wrapped with the request metrics middleware.
func (s *Server) Handler() http.Handler {
	return monitoring.NewPrometheusMiddleware(s.engine, newRouteLabeler(s.engine.Routes()))
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("HTTP server listening on %s", addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("Server forced to shutdown: %v", err)
			return err
		}
		return nil
	})
	return g.Wait()
}

const unmatchedRoute = "unmatched"

// newRouteLabeler labels a request with the pattern of the route serving its
// path, so metrics are per route. Paths no route serves share one label.
func newRouteLabeler(routes gin.RoutesInfo) func(*http.Request) string {
	patterns := make([][]string, 0, len(routes))
	paths := make([]string, 0, len(routes))
	for _, route := range routes {
		patterns = append(patterns, splitPath(route.Path))
		paths = append(paths, route.Path)
	}
	return func(r *http.Request) string {
		segments := splitPath(r.URL.Path)
		for i, pattern := range patterns {
			if matchRoute(pattern, segments) {
				return paths[i]
			}
		}
		return unmatchedRoute
	}
}

func splitPath(path string) []string {
	return strings.Split(strings.Trim(path, "/"), "/")
}

func matchRoute(pattern, segments []string) bool {
	if len(pattern) != len(segments) {
		return false
	}
	for i, p := range pattern {
		if strings.HasPrefix(p, ":") {
			if segments[i] == "" {
				return false
			}
			continue
		}
		if p != segments[i] {
			return false
		}
	}
	return true
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(log.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
		}).Info("request")
	}
}
