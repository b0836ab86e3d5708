package handlers

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"frodi/internal/services"

	"github.com/gin-gonic/gin"
)

//go:embed web/templates/*.html web/static/*
var webFS embed.FS

func loadTemplates() *template.Template {
	return template.Must(template.ParseFS(webFS, "web/templates/*.html"))
}

func staticFS() http.FileSystem {
	sub, err := fs.Sub(webFS, "web/static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

// Page renders a template that needs no request data.
func Page(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, name, gin.H{
			"Chapters": services.ChapterKeys(),
		})
	}
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
