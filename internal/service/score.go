package service

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/battleship-backend/internal/entity"
)

type ScoreService interface {
	ScoreFor(ctx context.Context, userID string) (entity.Score, error)
	// UserScore - the score rendered as "<name> : Wins <w> : Losses <l>".
	UserScore(ctx context.Context, userID string) (string, error)
	// Rankings - every user who finished a game, best first.
	Rankings(ctx context.Context) ([]entity.Score, error)
	RankingMessages(ctx context.Context) ([]string, error)
}

type scoreUserRepo interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
	List(ctx context.Context) ([]*entity.User, error)
}

type finishedGamesRepo interface {
	ListFinished(ctx context.Context) ([]*entity.Game, error)
}

type scoreService struct {
	userRepo scoreUserRepo
	gameRepo finishedGamesRepo
}

func NewScoreService(userRepo scoreUserRepo, gameRepo finishedGamesRepo) ScoreService {
	return &scoreService{
		userRepo: userRepo,
		gameRepo: gameRepo,
	}
}

func (that *scoreService) ScoreFor(ctx context.Context, userID string) (entity.Score, error) {
	user, err := that.userRepo.GetByID(ctx, userID)
	if err != nil {
		return entity.Score{}, fmt.Errorf("could not get user %s: %w", userID, err)
	}

	games, err := that.gameRepo.ListFinished(ctx)
	if err != nil {
		return entity.Score{}, fmt.Errorf("could not list finished games: %w", err)
	}

	score := entity.Score{Username: user.Username}
	score.Tally(user.ID, games)

	return score, nil
}

func (that *scoreService) UserScore(ctx context.Context, userID string) (string, error) {
	score, err := that.ScoreFor(ctx, userID)
	if err != nil {
		return "", err
	}

	return score.Message(), nil
}

func (that *scoreService) Rankings(ctx context.Context) ([]entity.Score, error) {
	users, err := that.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list users: %w", err)
	}

	games, err := that.gameRepo.ListFinished(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list finished games: %w", err)
	}

	scores := make([]entity.Score, 0, len(users))
	for _, user := range users {
		score := entity.Score{Username: user.Username}
		score.Tally(user.ID, games)

		if score.Played() {
			scores = append(scores, score)
		}
	}

	entity.RankScores(scores)

	return scores, nil
}

func (that *scoreService) RankingMessages(ctx context.Context) ([]string, error) {
	scores, err := that.Rankings(ctx)
	if err != nil {
		return nil, err
	}

	messages := make([]string, 0, len(scores))
	for _, score := range scores {
		messages = append(messages, score.Message())
	}

	return messages, nil
}
