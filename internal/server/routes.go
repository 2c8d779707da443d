package server

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/danmuck/bencodectl/internal/bencode"
	"github.com/danmuck/bencodectl/internal/command"
	"github.com/danmuck/bencodectl/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var ErrBodyTooLarge = errors.New("server: request body too large")

func (s *Server) RegisterRoutes() {
	r := s.router
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.Appeared).String(),
			"service": s.Name,
			"version": Version,
		})
	})

	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ready":   true,
			"uptime":  time.Since(s.Appeared).String(),
			"service": s.Name,
			"version": Version,
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/decode", s.handleDecode)
	r.POST("/command", s.handleCommandLine)
	r.POST("/command/:name", s.handleCommandArgs)
}

func (s *Server) readBody(c *gin.Context) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, ErrBodyTooLarge
		}
		return nil, err
	}
	return body, nil
}

func (s *Server) handleDecode(c *gin.Context) {
	body, err := s.readBody(c)
	if err != nil {
		writeBodyError(c, err)
		return
	}

	start := time.Now()
	v, err := s.decoder.Decode(body)
	elapsed := time.Since(start)
	if err != nil {
		var de *bencode.DecodeError
		if !errors.As(err, &de) {
			observability.RecordDecode("http", "internal", len(body), elapsed)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		observability.RecordDecode("http", de.Kind.String(), len(body), elapsed)
		log.Debug().
			Str("kind", de.Kind.String()).
			Str("rule", string(de.Rule)).
			Int("offset", de.Offset).
			Int("bytes", len(body)).
			Msg("decode rejected")
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  err.Error(),
			"kind":   de.Kind.String(),
			"rule":   string(de.Rule),
			"offset": de.Offset,
		})
		return
	}

	observability.RecordDecode("http", "ok", len(body), elapsed)
	c.JSON(http.StatusOK, gin.H{
		"kind":  v.Kind().String(),
		"value": v.Interface(),
	})
}

func (s *Server) handleCommandLine(c *gin.Context) {
	body, err := s.readBody(c)
	if err != nil {
		writeBodyError(c, err)
		return
	}
	cmd, err := command.Deserialize(string(body))
	if err != nil {
		observability.RecordCommand("invalid", false)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.runCommand(c, cmd)
}

type commandArgs struct {
	Args []string `json:"args"`
}

func (s *Server) handleCommandArgs(c *gin.Context) {
	var req commandArgs
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	args := append([]string{c.Param("name")}, req.Args...)
	cmd, err := command.Parse(args)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, command.ErrUnknownCommand) {
			status = http.StatusNotFound
		}
		observability.RecordCommand("invalid", false)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	s.runCommand(c, cmd)
}

func (s *Server) runCommand(c *gin.Context, cmd command.Command) {
	out, err := command.Execute(cmd)
	if err != nil {
		observability.RecordCommand(cmd.Name(), false)
		log.Error().Str("command", cmd.Name()).Err(err).Msg("command failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	observability.RecordCommand(cmd.Name(), true)
	log.Info().Str("command", cmd.Name()).Msg("command executed")
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"command": cmd.Name(),
		"output":  out,
		"line":    command.Serialize(cmd),
	})
}

func writeBodyError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	if errors.Is(err, ErrBodyTooLarge) {
		status = http.StatusRequestEntityTooLarge
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
