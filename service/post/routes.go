package post

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/linkora/linkora-server/cache"
	"github.com/linkora/linkora-server/cmd/utils"
	"gorm.io/gorm"
)

type Handler struct {
	engine *Engine
}

func NewHandler(db *gorm.DB, c *cache.Cache) *Handler {
	return &Handler{engine: NewEngine(db, c)}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/posts", utils.AuthMiddleware(h.CreatePost)).Methods("POST")
	router.HandleFunc("/posts/{id}", utils.AuthMiddleware(h.DeletePost)).Methods("DELETE")
	router.HandleFunc("/posts/{id}/like", utils.AuthMiddleware(h.ToggleLike)).Methods("POST")
	router.HandleFunc("/posts/{id}/comments", utils.AuthMiddleware(h.AddComment)).Methods("POST")
}

// CreatePost accepts multipart form data: a required "text" field and an
// optional "image" file which is stored and referenced by URL.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	actorID, err := utils.GetUserID(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(utils.MaxImageSize); err != nil {
		http.Error(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	text := r.FormValue("text")

	var imageURL string
	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()

		imageURL, err = utils.SaveImage(file, header)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	post, err := h.engine.CreatePost(r.Context(), actorID, text, imageURL)
	if err != nil {
		if imageURL != "" {
			utils.DeleteImage(imageURL)
		}
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Post created successfully",
		"post":    post,
	})
}

func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	actorID, err := utils.GetUserID(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	postID, err := parsePostID(r)
	if err != nil {
		http.Error(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	if err := h.engine.DeletePost(r.Context(), actorID, postID); err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Post deleted successfully",
	})
}

func (h *Handler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	actorID, err := utils.GetUserID(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	postID, err := parsePostID(r)
	if err != nil {
		http.Error(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	result, err := h.engine.ToggleLike(r.Context(), actorID, postID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	actorID, err := utils.GetUserID(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	postID, err := parsePostID(r)
	if err != nil {
		http.Error(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	comment, err := h.engine.AddComment(r.Context(), actorID, postID, body.Text)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, comment)
}

func parsePostID(r *http.Request) (uint, error) {
	vars := mux.Vars(r)
	postID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(postID), nil
}
