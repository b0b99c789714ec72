package models

import "time"

// Competition is reference data grouping clubs by country and league.
type Competition struct {
	ID                    uint    `gorm:"primarykey" json:"id"`
	CompetitionID         string  `gorm:"column:competition_id;uniqueIndex;not null" json:"competition_id"`
	CompetitionCode       *string `gorm:"column:competition_code" json:"competition_code"`
	Name                  string  `gorm:"not null" json:"name"`
	SubType               *string `gorm:"column:sub_type" json:"sub_type"`
	Type                  *string `gorm:"column:type" json:"type"`
	CountryID             *int    `gorm:"column:country_id" json:"country_id"`
	CountryName           *string `gorm:"column:country_name;index" json:"country_name"`
	DomesticLeagueCode    *string `gorm:"column:domestic_league_code" json:"domestic_league_code"`
	Confederation         *string `gorm:"column:confederation" json:"confederation"`
	URL                   *string `gorm:"column:url" json:"url"`
	IsMajorNationalLeague *string `gorm:"column:is_major_national_league" json:"is_major_national_league"`
}

// TableName specifies the table name for GORM
func (Competition) TableName() string {
	return "competitions"
}

// Club is reference data; the link to players is by club name, not a strict
// foreign key, because player imports carry only the club's display name.
type Club struct {
	ID                    uint     `gorm:"primarykey" json:"id"`
	ClubID                int      `gorm:"column:club_id;uniqueIndex;not null" json:"club_id"`
	ClubCode              *string  `gorm:"column:club_code" json:"club_code"`
	Name                  string   `gorm:"not null;index" json:"name"`
	DomesticCompetitionID *string  `gorm:"column:domestic_competition_id;index" json:"domestic_competition_id"`
	TotalMarketValue      *int     `gorm:"column:total_market_value" json:"total_market_value"`
	SquadSize             *int     `gorm:"column:squad_size" json:"squad_size"`
	AverageAge            *float64 `gorm:"column:average_age" json:"average_age"`
	ForeignersNumber      *int     `gorm:"column:foreigners_number" json:"foreigners_number"`
	ForeignersPercentage  *float64 `gorm:"column:foreigners_percentage" json:"foreigners_percentage"`
	NationalTeamPlayers   *int     `gorm:"column:national_team_players" json:"national_team_players"`
	StadiumName           *string  `gorm:"column:stadium_name" json:"stadium_name"`
	StadiumSeats          *int     `gorm:"column:stadium_seats" json:"stadium_seats"`
	NetTransferRecord     *string  `gorm:"column:net_transfer_record" json:"net_transfer_record"`
	CoachName             *string  `gorm:"column:coach_name" json:"coach_name"`
	LastSeason            *int     `gorm:"column:last_season" json:"last_season"`
}

// TableName specifies the table name for GORM
func (Club) TableName() string {
	return "clubs"
}

// PlayerFavorite links a user to a player by the player's internal row id.
// Invariant: at most one row per (user, player) pair.
type PlayerFavorite struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    int       `gorm:"column:user_id;not null;uniqueIndex:idx_user_player" json:"user_id"`
	PlayerID  int       `gorm:"column:player_id;not null;uniqueIndex:idx_user_player" json:"player_id"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName specifies the table name for GORM
func (PlayerFavorite) TableName() string {
	return "player_favorites"
}
