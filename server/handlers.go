package server

import (
	"commonroom/auth"
	"commonroom/service"
	"commonroom/validation"
	"github.com/gin-gonic/gin"
	"net/http"
)

const identityKey = "identity"

// authenticate verifies the bearer token and stores the identity on the context.
func (s *Server) authenticate(c *gin.Context) {
	identity, err := s.tokens.VerifyHeader(c.GetHeader("Authorization"))
	if err != nil {
		sendError(c, err)
		return
	}
	c.Set(identityKey, identity)
	c.Next()
}

func actor(c *gin.Context) auth.Identity {
	identity, _ := c.Get(identityKey)
	return identity.(auth.Identity)
}

type messageResponse struct {
	Message string `json:"message"`
}

func (s *Server) register(c *gin.Context) {
	var in validation.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	result, err := s.service.Register(c.Request.Context(), in)
	if err != nil {
		sendError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (s *Server) login(c *gin.Context) {
	var in validation.LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	result, err := s.service.Login(c.Request.Context(), in)
	if err != nil {
		sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) getUsers(c *gin.Context) {
	users, err := s.service.GetUsers(c.Request.Context())
	if err != nil {
		sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (s *Server) getUser(c *gin.Context) {
	user, err := s.service.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) getUserPosts(c *gin.Context) {
	posts, err := s.service.GetUserPosts(c.Request.Context(), c.Param("id"))
	if err != nil {
		sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (s *Server) getUserLikedPosts(c *gin.Context) {
	posts, err := s.service.GetUserLikedPosts(c.Request.Context(), c.Param("id"))
	if err != nil {
		sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (s *Server) followClicked(c *gin.Context) {
	user, err := s.service.FollowClicked(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) deleteUser(c *gin.Context) {
	msg, err := s.service.DeleteUser(c.Request.Context(), actor(c))
	if err != nil {
		sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: msg})
}

func (s *Server) updateProfileDetails(c *gin.Context) {
	var in service.ProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	user, err := s.service.UpdateProfileDetails(c.Request.Context(), actor(c), in)
	if err != nil {
		sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) getFollowingPosts(c *gin.Context) {
	posts, err := s.service.GetFollowingPosts(c.Request.Context(), actor(c))
	if err != nil {
		sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (s *Server) requestMediaUpload(c *gin.Context) {
	upload, err := s.service.RequestMediaUpload(c.Request.Context(), actor(c))
	if err != nil {
		sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, upload)
}

func (s *Server) getPosts(c *gin.Context) {
	posts, err := s.service.GetPosts(c.Request.Context())
	if err != nil {
		sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (s *Server) getPost(c *gin.Context) {
	post, err := s.service.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (s *Server) createPost(c *gin.Context) {
	var in service.PostInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	post, err := s.service.CreatePost(c.Request.Context(), actor(c), in)
	if err != nil {
		sendError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (s *Server) deletePost(c *gin.Context) {
	msg, err := s.service.DeletePost(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: msg})
}

func (s *Server) likePost(c *gin.Context) {
	post, err := s.service.LikePost(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (s *Server) dislikePost(c *gin.Context) {
	post, err := s.service.DislikePost(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (s *Server) createComment(c *gin.Context) {
	var in struct {
		Body string `json:"body"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	post, err := s.service.CreateComment(c.Request.Context(), actor(c), c.Param("id"), in.Body)
	if err != nil {
		sendError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (s *Server) deleteComment(c *gin.Context) {
	post, err := s.service.DeleteComment(c.Request.Context(), actor(c), c.Param("id"), c.Param("commentId"))
	if err != nil {
		sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (s *Server) likeComment(c *gin.Context) {
	post, err := s.service.LikeComment(c.Request.Context(), actor(c), c.Param("id"), c.Param("commentId"))
	if err != nil {
		sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (s *Server) dislikeComment(c *gin.Context) {
	post, err := s.service.DislikeComment(c.Request.Context(), actor(c), c.Param("id"), c.Param("commentId"))
	if err != nil {
		sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}
