package service

import (
	"github.com/deppfellow/go-posts/internal/repository"
	"github.com/deppfellow/go-posts/internal/server"
)

type Services struct {
	Post *PostService
}

func NewServices(s *server.Server, repos *repository.Repositories) (*Services, error) {
	return &Services{
		Post: NewPostService(s, repos.Post),
	}, nil
}
