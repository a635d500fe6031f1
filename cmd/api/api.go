package api

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/linkora/linkora-server/cache"
	"github.com/linkora/linkora-server/cmd/utils"
	"github.com/linkora/linkora-server/service/feed"
	"github.com/linkora/linkora-server/service/graph"
	"github.com/linkora/linkora-server/service/post"
	"github.com/linkora/linkora-server/service/user"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type APIServer struct {
	address string
	db      *gorm.DB
	cache   *cache.Cache
	logger  *zap.Logger
}

func NewAPIServer(address string, db *gorm.DB, c *cache.Cache, logger *zap.Logger) *APIServer {
	return &APIServer{
		address: address,
		db:      db,
		cache:   c,
		logger:  logger,
	}
}

func (s *APIServer) Run() error {
	router := mux.NewRouter()
	router.Use(utils.RequestLogger(s.logger))
	subrouter := router.PathPrefix("/api/v1").Subrouter()

	userHandler := user.NewHandler(s.db)
	userHandler.RegisterRoutes(subrouter)

	graphHandler := graph.NewHandler(s.db)
	graphHandler.RegisterRoutes(subrouter)

	postHandler := post.NewHandler(s.db, s.cache)
	postHandler.RegisterRoutes(subrouter)

	feedHandler := feed.NewHandler(s.db, s.cache)
	feedHandler.RegisterRoutes(subrouter)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)

	s.logger.Info("server listening", zap.String("address", s.address))
	return http.ListenAndServe(s.address, cors(router))
}
