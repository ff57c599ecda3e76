package services

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"taskhub/errs"
	"taskhub/models"
	"taskhub/policy"
)

type CreateCommentInput struct {
	// Older clients send comment_text.
	Text        string `json:"text"`
	CommentText string `json:"comment_text"`
}

func (in CreateCommentInput) body() string {
	if t := strings.TrimSpace(in.Text); t != "" {
		return t
	}
	return strings.TrimSpace(in.CommentText)
}

// LikeResult is the state after a toggle
type LikeResult struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

type CommentService struct {
	Scope    *Scope
	Comments CommentStore
	Log      *logrus.Entry
}

func (s *CommentService) Create(ctx context.Context, userID, taskID uint, in CreateCommentInput) (*models.Comment, error) {
	text := in.body()
	if text == "" {
		return nil, errs.Validation("text is required")
	}
	task, _, err := s.Scope.Task(ctx, userID, taskID, policy.CommentCreate, policy.Resource{})
	if err != nil {
		return nil, err
	}
	comment := &models.Comment{TaskID: task.ID, UserID: userID, Text: text}
	if err := s.Comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) List(ctx context.Context, userID, taskID uint) ([]models.Comment, error) {
	task, _, err := s.Scope.Task(ctx, userID, taskID, policy.CommentRead, policy.Resource{})
	if err != nil {
		return nil, err
	}
	comments, err := s.Comments.ByTask(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	return comments, nil
}

// Delete is allowed for the author, a team admin or the team creator
func (s *CommentService) Delete(ctx context.Context, userID, commentID uint) error {
	comment, err := s.Comments.ByID(ctx, commentID)
	if err != nil {
		return err
	}
	if _, _, err := s.Scope.Task(ctx, userID, comment.TaskID, policy.CommentDelete, policy.Resource{OwnerID: comment.UserID}); err != nil {
		return err
	}
	return s.Comments.Delete(ctx, comment.ID)
}

func (s *CommentService) ToggleLike(ctx context.Context, userID, commentID uint) (*LikeResult, error) {
	comment, err := s.Comments.ByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.Scope.Task(ctx, userID, comment.TaskID, policy.CommentLike, policy.Resource{OwnerID: comment.UserID}); err != nil {
		return nil, err
	}
	liked, count, err := s.Comments.ToggleLike(ctx, comment.ID, userID)
	if err != nil {
		return nil, err
	}
	return &LikeResult{Liked: liked, LikeCount: count}, nil
}
