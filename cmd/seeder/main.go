// The seeder bootstraps the catalog from the exported CSV dumps: players,
// clubs and competitions. It is idempotent per run only in the sense that it
// inserts fresh rows; point it at an empty database.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"reposition/internal/config"
	"reposition/internal/csvtable"
	"reposition/internal/models"
	"reposition/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const batchSize = 500

func main() {
	log := logrus.New()

	playersPath := flag.String("players", "data/players.csv", "players CSV path")
	clubsPath := flag.String("clubs", "data/clubs.csv", "clubs CSV path")
	competitionsPath := flag.String("competitions", "data/competitions.csv", "competitions CSV path")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	gdb, err := gorm.Open(postgres.Open(cfg.GetDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		log.WithError(err).Fatal("failed to connect to PostgreSQL")
	}
	db := repository.NewDB(gdb)
	if err := db.AutoMigrate(); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}
	log.Info("connected, migrations completed")

	ctx := context.Background()
	catalogRepo := repository.NewCatalogRepository(db)
	playerRepo := repository.NewPlayerRepository(db)

	competitions, err := loadCompetitions(*competitionsPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load competitions")
	}
	if err := catalogRepo.BulkCreateCompetitions(ctx, competitions, batchSize); err != nil {
		log.WithError(err).Fatal("failed to seed competitions")
	}
	log.WithField("count", len(competitions)).Info("competitions seeded")

	clubs, err := loadClubs(*clubsPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load clubs")
	}
	if err := catalogRepo.BulkCreateClubs(ctx, clubs, batchSize); err != nil {
		log.WithError(err).Fatal("failed to seed clubs")
	}
	log.WithField("count", len(clubs)).Info("clubs seeded")

	players, err := loadPlayers(*playersPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load players")
	}
	if err := playerRepo.BulkCreate(ctx, players, batchSize); err != nil {
		log.WithError(err).Fatal("failed to seed players")
	}
	log.WithField("count", len(players)).Info("players seeded")

	db.Close()
	log.Info("seeding finished")
}

func loadCompetitions(path string) ([]models.Competition, error) {
	table, err := parseFile(path)
	if err != nil {
		return nil, err
	}
	competitions := make([]models.Competition, 0, table.Len())
	for i := 0; i < table.Len(); i++ {
		row := table.Row(i)
		id := row.String("competition_id")
		if id == "" {
			continue
		}
		competitions = append(competitions, models.Competition{
			CompetitionID: id,
			Name:          row.String("name"),
			CountryName:   row.StringPtr("country_name"),
		})
	}
	return competitions, nil
}

func loadClubs(path string) ([]models.Club, error) {
	table, err := parseFile(path)
	if err != nil {
		return nil, err
	}
	clubs := make([]models.Club, 0, table.Len())
	for i := 0; i < table.Len(); i++ {
		row := table.Row(i)
		id := row.Int("club_id")
		if id == nil {
			continue
		}
		clubs = append(clubs, models.Club{
			ClubID:                *id,
			Name:                  row.String("name"),
			DomesticCompetitionID: row.StringPtr("domestic_competition_id"),
		})
	}
	return clubs, nil
}

func loadPlayers(path string) ([]models.Player, error) {
	table, err := parseFile(path)
	if err != nil {
		return nil, err
	}
	players := make([]models.Player, 0, table.Len())
	for i := 0; i < table.Len(); i++ {
		row := table.Row(i)
		id := row.Int("player_id")
		if id == nil {
			continue
		}
		p := models.Player{
			PlayerID:                *id,
			Name:                    row.String("name"),
			CountryOfCitizenship:    row.StringPtr("country_of_citizenship"),
			DateOfBirth:             row.StringPtr("date_of_birth"),
			SubPosition:             row.StringPtr("sub_position"),
			Position:                row.StringPtr("position"),
			Foot:                    row.StringPtr("foot"),
			HeightInCm:              row.Int("height_in_cm"),
			CurrentClubName:         row.StringPtr("current_club_name"),
			MarketValueInEur:        row.Int("market_value_in_eur"),
			HighestMarketValueInEur: row.Int("highest_market_value_in_eur"),
			ClubID:                  row.Int("current_club_id"),
			Ovr:                     row.Int("OVR"),
			Pac:                     row.Int("PAC"),
			Sho:                     row.Int("SHO"),
			Pas:                     row.Int("PAS"),
			Dri:                     row.Int("DRI"),
			Def:                     row.Int("DEF"),
			Phy:                     row.Int("PHY"),
			PreferredFoot:           row.StringPtr("preferred_foot"),
			League:                  row.StringPtr("league"),
			Team:                    row.StringPtr("team"),
			WeightInKg:              row.Float("weight_in_kg"),
			ImageURL:                row.StringPtr("image_url"),
			Age:                     row.Int("age"),
		}
		if p.Age == nil {
			p.Age = ageFromBirthDate(p.DateOfBirth)
		}
		players = append(players, p)
	}
	return players, nil
}

// ageFromBirthDate derives a whole-year age from a YYYY-MM-DD birth date.
func ageFromBirthDate(dob *string) *int {
	if dob == nil || len(*dob) < 10 {
		return nil
	}
	born, err := time.Parse("2006-01-02", (*dob)[:10])
	if err != nil {
		return nil
	}
	now := time.Now()
	age := now.Year() - born.Year()
	if now.YearDay() < born.YearDay() {
		age--
	}
	if age < 0 || age > 100 {
		return nil
	}
	return &age
}

func parseFile(path string) (*csvtable.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return csvtable.Parse(f)
}
