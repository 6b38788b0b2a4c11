package api

import (
	"github.com/gin-gonic/gin"
	"github.com/kotche/notekeeper/internal/model"
	"net/http"
	"strconv"
)

type loginRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Both keys must be present. Body may be empty, title may not.
type noteRequest struct {
	Title string  `form:"title" json:"title" binding:"required,max=256"`
	Body  *string `form:"body" json:"body" binding:"required,max=65536"`
}

// noteResponse deliberately has no deleted flag.
type noteResponse struct {
	ID     model.NoteID `json:"id"`
	Title  string       `json:"title"`
	Body   string       `json:"body"`
	UserID model.UserID `json:"user_id"`
}

type successResponse struct {
	Success string `json:"success"`
}

func toResponse(note model.Note) noteResponse {
	return noteResponse{
		ID:     note.ID,
		Title:  note.Title,
		Body:   note.Body,
		UserID: note.OwnerID,
	}
}

func (s *Server) login(c *gin.Context) {
	var in loginRequest
	if err := c.ShouldBind(&in); err != nil {
		writeValidationError(c, err)
		return
	}

	token, err := s.users.Login(c.Request.Context(), in.Username, in.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) listNotes(c *gin.Context) {
	var ownerFilter *model.UserID
	if raw := c.Query("note_user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			abortWithDetail(c, http.StatusUnprocessableEntity, "note_user_id must be an integer")
			return
		}
		userID := model.UserID(id)
		ownerFilter = &userID
	}

	list, err := s.notes.List(c.Request.Context(), actorFrom(c), ownerFilter)
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]noteResponse, 0, len(list))
	for _, note := range list {
		out = append(out, toResponse(note))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getNote(c *gin.Context) {
	noteID, ok := noteIDParam(c)
	if !ok {
		return
	}

	note, err := s.notes.Get(c.Request.Context(), actorFrom(c), noteID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(*note))
}

func (s *Server) createNote(c *gin.Context) {
	var in noteRequest
	if err := c.ShouldBind(&in); err != nil {
		writeValidationError(c, err)
		return
	}

	note, err := s.notes.Create(c.Request.Context(), actorFrom(c), in.Title, *in.Body)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(*note))
}

func (s *Server) updateNote(c *gin.Context) {
	noteID, ok := noteIDParam(c)
	if !ok {
		return
	}

	var in noteRequest
	if err := c.ShouldBind(&in); err != nil {
		writeValidationError(c, err)
		return
	}

	note, err := s.notes.Update(c.Request.Context(), actorFrom(c), noteID, in.Title, *in.Body)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(*note))
}

func (s *Server) deleteNote(c *gin.Context) {
	noteID, ok := noteIDParam(c)
	if !ok {
		return
	}

	if err := s.notes.Delete(c.Request.Context(), actorFrom(c), noteID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse{Success: "ok"})
}

func (s *Server) restoreNote(c *gin.Context) {
	noteID, ok := noteIDParam(c)
	if !ok {
		return
	}

	note, err := s.notes.Restore(c.Request.Context(), actorFrom(c), noteID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(*note))
}

func noteIDParam(c *gin.Context) (model.NoteID, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abortWithDetail(c, http.StatusUnprocessableEntity, "note id must be an integer")
		return 0, false
	}
	return model.NoteID(id), true
}
