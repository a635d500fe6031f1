package feed

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/linkora/linkora-server/cache"
	"github.com/linkora/linkora-server/cmd/utils"
	"gorm.io/gorm"
)

type Handler struct {
	aggregator *Aggregator
}

func NewHandler(db *gorm.DB, c *cache.Cache) *Handler {
	return &Handler{aggregator: NewAggregator(db, c)}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/posts", h.GetGlobalFeed).Methods("GET")
	router.HandleFunc("/posts/{id}", h.GetPost).Methods("GET")
	router.HandleFunc("/users/{id}/posts", h.GetUserPosts).Methods("GET")
}

func (h *Handler) GetGlobalFeed(w http.ResponseWriter, r *http.Request) {
	feed, err := h.aggregator.Global(r.Context())
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"posts": feed,
	})
}

func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	postID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	post, err := h.aggregator.PostByID(r.Context(), uint(postID))
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, post)
}

func (h *Handler) GetUserPosts(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	posts, err := h.aggregator.ForUser(r.Context(), uint(userID))
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"posts": posts,
	})
}
