package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
	"github.com/rocketscienceinc/battleship-backend/internal/entity"
	"github.com/rocketscienceinc/battleship-backend/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gameRepoFactory func(t *testing.T) (context.Context, GameRepository)

func redisGameRepo(t *testing.T) (context.Context, GameRepository) {
	ctx, st := suite.New(t)
	return ctx, NewGameRepository(st.Storage)
}

func memoryGameRepo(_ *testing.T) (context.Context, GameRepository) {
	return context.Background(), NewMemoryGameRepository()
}

func TestGameRepository_Redis(t *testing.T) {
	runGameRepositoryTests(t, redisGameRepo)
}

func TestGameRepository_Memory(t *testing.T) {
	runGameRepositoryTests(t, memoryGameRepo)
}

func testBoats(gameID string, userIDs ...string) []entity.BoatCell {
	var boats []entity.BoatCell
	for _, userID := range userIDs {
		boats = append(boats,
			entity.BoatCell{GameID: gameID, UserID: userID, ShipType: entity.Patrol, Cell: entity.Cell{Row: "B", Col: 1}},
			entity.BoatCell{GameID: gameID, UserID: userID, ShipType: entity.Patrol, Cell: entity.Cell{Row: "A", Col: 1}},
			entity.BoatCell{GameID: gameID, UserID: userID, ShipType: entity.Destroyer, Cell: entity.Cell{Row: "C", Col: 5}},
		)
	}
	return boats
}

func runGameRepositoryTests(t *testing.T, newRepo gameRepoFactory) {
	t.Run("Create_GetByID", func(t *testing.T) {
		ctx, repo := newRepo(t)

		// Given: a new game
		game := entity.NewGame("g1", "alice", "bob")

		// When: it is created and read back
		require.NoError(t, repo.Create(ctx, game, testBoats("g1", "alice", "bob")))
		got, err := repo.GetByID(ctx, "g1")

		// Then: the stored game matches
		require.NoError(t, err)
		assert.Equal(t, game.ID, got.ID)
		assert.Equal(t, "alice", got.User1ID)
		assert.Equal(t, "bob", got.User2ID)
		assert.True(t, got.IsInProgress())
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, repo := newRepo(t)

		got, err := repo.GetByID(ctx, "missing")

		require.ErrorIs(t, err, apperror.ErrGameNotFound)
		assert.Nil(t, got)
	})

	t.Run("Create_PairAlreadyInProgress", func(t *testing.T) {
		ctx, repo := newRepo(t)

		// Given: a game in progress between alice and bob
		require.NoError(t, repo.Create(ctx, entity.NewGame("g1", "alice", "bob"), nil))

		// When: bob starts another game against alice
		err := repo.Create(ctx, entity.NewGame("g2", "bob", "alice"), nil)

		// Then: the pair is rejected and the second game does not exist
		require.ErrorIs(t, err, apperror.ErrGameInProgress)
		_, err = repo.GetByID(ctx, "g2")
		require.ErrorIs(t, err, apperror.ErrGameNotFound)
	})

	t.Run("Boats_Sorted", func(t *testing.T) {
		ctx, repo := newRepo(t)

		require.NoError(t, repo.Create(ctx, entity.NewGame("g1", "alice", "bob"), testBoats("g1", "alice", "bob")))

		cells, err := repo.Boats(ctx, "g1", "bob")
		require.NoError(t, err)

		got := make([]string, 0, len(cells))
		for _, cell := range cells {
			got = append(got, cell.Key())
		}
		if diff := cmp.Diff([]string{"C5", "A1", "B1"}, got); diff != "" {
			t.Errorf("boats mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("ListInProgress", func(t *testing.T) {
		ctx, repo := newRepo(t)

		// Given: three games, one of them without carol
		require.NoError(t, repo.Create(ctx, entity.NewGame("g1", "dave", "carol"), nil))
		require.NoError(t, repo.Create(ctx, entity.NewGame("g2", "alice", "carol"), nil))
		require.NoError(t, repo.Create(ctx, entity.NewGame("g3", "alice", "bob"), nil))

		// When: listing carol's games
		games, err := repo.ListInProgressByUser(ctx, "carol")
		require.NoError(t, err)

		// Then: only hers are returned, ordered by participants
		require.Len(t, games, 2)
		assert.Equal(t, "g2", games[0].ID)
		assert.Equal(t, "g1", games[1].ID)

		all, err := repo.ListInProgress(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("RunInTx_AppendsMoves", func(t *testing.T) {
		ctx, repo := newRepo(t)
		require.NoError(t, repo.Create(ctx, entity.NewGame("g1", "alice", "bob"), testBoats("g1", "alice", "bob")))

		// Given: nobody has moved yet
		last, err := repo.LastGameMove(ctx, "g1")
		require.NoError(t, err)
		assert.Nil(t, last)

		// When: three moves are made in separate units of work
		targets := []struct {
			userID string
			cell   entity.Cell
		}{
			{"alice", entity.Cell{Row: "A", Col: 1}},
			{"bob", entity.Cell{Row: "J", Col: 10}},
			{"alice", entity.Cell{Row: "B", Col: 1}},
		}
		for _, target := range targets {
			err = repo.RunInTx(ctx, "g1", func(tx GameTx) error {
				assert.False(t, tx.HasMove(target.userID, target.cell))
				tx.AppendMove(&entity.Move{
					GameID:   "g1",
					UserID:   target.userID,
					Sequence: tx.NextSequence(),
					Outcome:  entity.OutcomeMiss,
					Cell:     target.cell,
				})
				return nil
			})
			require.NoError(t, err)
		}

		// Then: history is numbered per game and the last moves are tracked
		moves, err := repo.Moves(ctx, "g1")
		require.NoError(t, err)
		require.Len(t, moves, 3)
		for i, move := range moves {
			assert.Equal(t, int64(i+1), move.Sequence)
		}

		aliceLast, err := repo.LastMove(ctx, "g1", "alice")
		require.NoError(t, err)
		require.NotNil(t, aliceLast)
		assert.Equal(t, "B1", aliceLast.Key())

		gameLast, err := repo.LastGameMove(ctx, "g1")
		require.NoError(t, err)
		require.NotNil(t, gameLast)
		assert.Equal(t, int64(3), gameLast.Sequence)

		err = repo.RunInTx(ctx, "g1", func(tx GameTx) error {
			assert.True(t, tx.HasMove("alice", entity.Cell{Row: "A", Col: 1}))
			assert.False(t, tx.HasMove("bob", entity.Cell{Row: "A", Col: 1}))
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("RunInTx_UpdatesBoatsAndFinishes", func(t *testing.T) {
		ctx, repo := newRepo(t)
		require.NoError(t, repo.Create(ctx, entity.NewGame("g1", "alice", "bob"), testBoats("g1", "alice", "bob")))

		// When: a boat cell is hit and the game is finished
		err := repo.RunInTx(ctx, "g1", func(tx GameTx) error {
			cells := tx.Boats("bob")
			cells[0].Hit = true
			tx.UpdateBoatCell(cells[0])

			game := tx.Game()
			if err := game.Finish("alice"); err != nil {
				return err
			}
			tx.UpdateGame(game)
			return nil
		})
		require.NoError(t, err)

		// Then: the changes are visible outside the unit of work
		cells, err := repo.Boats(ctx, "g1", "bob")
		require.NoError(t, err)
		hits := 0
		for _, cell := range cells {
			if cell.Hit {
				hits++
			}
		}
		assert.Equal(t, 1, hits)

		game, err := repo.GetByID(ctx, "g1")
		require.NoError(t, err)
		assert.True(t, game.IsFinished())
		assert.Equal(t, "alice", game.WinnerID)

		finished, err := repo.ListFinished(ctx)
		require.NoError(t, err)
		require.Len(t, finished, 1)

		inProgress, err := repo.ListInProgress(ctx)
		require.NoError(t, err)
		assert.Empty(t, inProgress)

		// And: the pair can start a new game
		require.NoError(t, repo.Create(ctx, entity.NewGame("g2", "bob", "alice"), nil))
	})

	t.Run("RunInTx_ErrorDropsWrites", func(t *testing.T) {
		ctx, repo := newRepo(t)
		require.NoError(t, repo.Create(ctx, entity.NewGame("g1", "alice", "bob"), testBoats("g1", "alice", "bob")))

		errBoom := errors.New("boom")

		// When: the callback stages writes and fails
		err := repo.RunInTx(ctx, "g1", func(tx GameTx) error {
			tx.AppendMove(&entity.Move{GameID: "g1", UserID: "alice", Sequence: tx.NextSequence(), Cell: entity.Cell{Row: "A", Col: 1}})
			game := tx.Game()
			game.Cancel()
			tx.UpdateGame(game)
			return errBoom
		})

		// Then: nothing was written
		require.ErrorIs(t, err, errBoom)

		moves, err := repo.Moves(ctx, "g1")
		require.NoError(t, err)
		assert.Empty(t, moves)

		game, err := repo.GetByID(ctx, "g1")
		require.NoError(t, err)
		assert.True(t, game.IsInProgress())
	})

	t.Run("RunInTx_NotFound", func(t *testing.T) {
		ctx, repo := newRepo(t)

		err := repo.RunInTx(ctx, "missing", func(GameTx) error { return nil })

		require.ErrorIs(t, err, apperror.ErrGameNotFound)
	})
}
