package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	models "github.com/chainscope/tokenscan/internal/storage"
	"github.com/go-testfixtures/testfixtures/v3"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const pendleAddress = "0x808507121b80c02388fad14726482e061b8da827"

type TestSuite struct {
	suite.Suite
	psqlContainer *tcpostgres.PostgresContainer
	storage       Storage
}

// SetupSuite -
func (s *TestSuite) SetupSuite() {
	ctx, ctxCancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer ctxCancel()

	psqlContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15"),
		tcpostgres.WithDatabase("db_test"),
		tcpostgres.WithUsername("user"),
		tcpostgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second),
		),
	)
	s.Require().NoError(err)
	s.psqlContainer = psqlContainer

	host, err := psqlContainer.Host(ctx)
	s.Require().NoError(err)
	port, err := psqlContainer.MappedPort(ctx, "5432/tcp")
	s.Require().NoError(err)

	s.storage, err = Create(ctx, Config{
		Host:     host,
		Port:     port.Int(),
		User:     "user",
		Password: "password",
		Database: "db_test",
		SSLMode:  "disable",
	})
	s.Require().NoError(err)

	connStr, err := psqlContainer.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	db, err := sql.Open("postgres", connStr)
	s.Require().NoError(err)

	fixtures, err := testfixtures.New(
		testfixtures.Database(db),
		testfixtures.Dialect("postgres"),
		testfixtures.Directory("fixtures"),
	)
	s.Require().NoError(err)
	s.Require().NoError(fixtures.Load())
	s.Require().NoError(db.Close())
}

func (s *TestSuite) TearDownSuite() {
	ctx, ctxCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer ctxCancel()

	s.Require().NoError(s.storage.Close())
	s.Require().NoError(s.psqlContainer.Terminate(ctx))
}

func (s *TestSuite) TestTokenGetByKey() {
	ctx, ctxCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer ctxCancel()

	token, err := s.storage.Tokens.GetByKey(ctx, pendleAddress, "1")
	s.Require().NoError(err)
	s.Require().Equal("Pendle", *token.Name)
	s.Require().Equal("PENDLE", *token.Symbol)
	s.Require().EqualValues(74, token.OverallScore)
	s.Require().Equal("coingecko", token.Provenance["name"])

	_, err = s.storage.Tokens.GetByKey(ctx, pendleAddress, "56")
	s.Require().Error(err)
}

func (s *TestSuite) TestTokenGetStale() {
	ctx, ctxCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer ctxCancel()

	stale, err := s.storage.Tokens.GetStale(ctx, time.Now(), 10)
	s.Require().NoError(err)
	s.Require().NotEmpty(stale)

	found := false
	for i := range stale {
		if stale[i].Address == pendleAddress && stale[i].ChainID == "1" {
			found = true
		}
	}
	s.Require().True(found)

	stale, err = s.storage.Tokens.GetStale(ctx, time.Unix(1000, 0), 10)
	s.Require().NoError(err)
	s.Require().Empty(stale)
}

func (s *TestSuite) TestSnapshotGetByKey() {
	ctx, ctxCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer ctxCancel()

	security, err := s.storage.Security.GetByKey(ctx, pendleAddress, "1")
	s.Require().NoError(err)
	s.Require().EqualValues(85, security.Score)
	s.Require().True(*security.OwnershipRenounced)

	liquidity, err := s.storage.Liquidity.GetByKey(ctx, pendleAddress, "1")
	s.Require().NoError(err)
	s.Require().EqualValues(75, liquidity.Score)
	s.Require().Len(liquidity.MajorPairs, 1)
}

func (s *TestSuite) TestInvalidateThenUpsertIdempotent() {
	ctx, ctxCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer ctxCancel()

	const (
		address = "0x0e09fabb73bd3ade0a17ecc321fd13a19e81ce82"
		chainID = "56"
	)

	for attempt := 0; attempt < 2; attempt++ {
		s.storage.Invalidate(ctx, address, chainID)

		name := "PancakeSwap"
		price := decimal.NewFromFloat(1.87)
		s.Require().NoError(s.storage.Tokens.Upsert(ctx, &models.Token{
			Address:      address,
			ChainID:      chainID,
			Name:         &name,
			Price:        &price,
			OverallScore: 60 + attempt,
		}))

		s.Require().NoError(s.storage.Security.Upsert(ctx, &models.SecuritySnapshot{
			Address: address, ChainID: chainID, Score: 70 + attempt,
		}))
		s.Require().NoError(s.storage.Tokenomics.Upsert(ctx, &models.TokenomicsSnapshot{
			Address: address, ChainID: chainID, Score: 50 + attempt,
		}))
		s.Require().NoError(s.storage.Liquidity.Upsert(ctx, &models.LiquiditySnapshot{
			Address: address, ChainID: chainID, Score: 55 + attempt,
		}))
		s.Require().NoError(s.storage.Community.Upsert(ctx, &models.CommunitySnapshot{
			Address: address, ChainID: chainID, Score: 40 + attempt,
		}))
		s.Require().NoError(s.storage.Development.Upsert(ctx, &models.DevelopmentSnapshot{
			Address: address, ChainID: chainID, Score: 30 + attempt,
		}))

		s.Require().NoError(s.storage.ScanEvents.Add(ctx, &models.ScanEvent{
			Address: address, ChainID: chainID, OverallScore: 60 + attempt,
		}))
	}

	for _, model := range []any{
		(*models.Token)(nil),
		(*models.SecuritySnapshot)(nil),
		(*models.TokenomicsSnapshot)(nil),
		(*models.LiquiditySnapshot)(nil),
		(*models.CommunitySnapshot)(nil),
		(*models.DevelopmentSnapshot)(nil),
	} {
		count, err := s.storage.DB().NewSelect().
			Model(model).
			Where("address = ?", address).
			Where("chain_id = ?", chainID).
			Count(ctx)
		s.Require().NoError(err)
		s.Require().Equal(1, count)
	}

	token, err := s.storage.Tokens.GetByKey(ctx, address, chainID)
	s.Require().NoError(err)
	s.Require().EqualValues(61, token.OverallScore)

	security, err := s.storage.Security.GetByKey(ctx, address, chainID)
	s.Require().NoError(err)
	s.Require().EqualValues(71, security.Score)

	// scan events are append-only, one row per completed scan
	events, err := s.storage.ScanEvents.GetByKey(ctx, address, chainID, 10)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Require().EqualValues(61, events[0].OverallScore)
	s.Require().EqualValues(60, events[1].OverallScore)
}

func (s *TestSuite) TestTokenUpsertKeepsIdentity() {
	ctx, ctxCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer ctxCancel()

	before, err := s.storage.Tokens.GetByKey(ctx, pendleAddress, "1")
	s.Require().NoError(err)

	description := "Pendle is a yield-trading protocol."
	s.Require().NoError(s.storage.Tokens.Upsert(ctx, &models.Token{
		Address:      pendleAddress,
		ChainID:      "1",
		Name:         before.Name,
		Symbol:       before.Symbol,
		Description:  &description,
		OverallScore: 75,
	}))

	after, err := s.storage.Tokens.GetByKey(ctx, pendleAddress, "1")
	s.Require().NoError(err)
	s.Require().Equal(before.ID, after.ID)
	s.Require().Equal(description, *after.Description)
	s.Require().EqualValues(75, after.OverallScore)
	s.Require().Greater(after.UpdateID, before.UpdateID)
}

func (s *TestSuite) TestScanEventsNewestFirst() {
	ctx, ctxCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer ctxCancel()

	events, err := s.storage.ScanEvents.GetByKey(ctx, pendleAddress, "1", 1)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Require().EqualValues(70, events[0].OverallScore)
}

func TestSuite_Run(t *testing.T) {
	suite.Run(t, new(TestSuite))
}
