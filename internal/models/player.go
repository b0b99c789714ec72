package models

import (
	"time"
)

// Player holds one imported player row. player_id is the external identity
// every other entity keys on; the surrogate id stays internal. Rows are
// written by bulk import and only touched again by a re-import.
type Player struct {
	ID                      uint     `gorm:"primarykey" json:"id"`
	PlayerID                int      `gorm:"column:player_id;uniqueIndex;not null" json:"player_id"`
	Name                    string   `gorm:"not null" json:"name"`
	CountryOfCitizenship    *string  `gorm:"column:country_of_citizenship" json:"country_of_citizenship"`
	DateOfBirth             *string  `gorm:"column:date_of_birth" json:"date_of_birth"`
	SubPosition             *string  `gorm:"column:sub_position" json:"sub_position"`
	Position                *string  `gorm:"column:position" json:"position"`
	Foot                    *string  `gorm:"column:foot" json:"foot"`
	HeightInCm              *int     `gorm:"column:height_in_cm" json:"height_in_cm"`
	CurrentClubName         *string  `gorm:"column:current_club_name" json:"current_club_name"`
	MarketValueInEur        *int     `gorm:"column:market_value_in_eur" json:"market_value_in_eur"`
	HighestMarketValueInEur *int     `gorm:"column:highest_market_value_in_eur" json:"highest_market_value_in_eur"`
	ClubID                  *int     `gorm:"column:club_id" json:"club_id"`
	Ovr                     *int     `gorm:"column:ovr;index" json:"ovr"`
	Pac                     *int     `gorm:"column:pac" json:"pac"`
	Sho                     *int     `gorm:"column:sho" json:"sho"`
	Pas                     *int     `gorm:"column:pas" json:"pas"`
	Dri                     *int     `gorm:"column:dri" json:"dri"`
	Def                     *int     `gorm:"column:def" json:"def"`
	Phy                     *int     `gorm:"column:phy" json:"phy"`
	Acceleration            *int     `gorm:"column:acceleration" json:"acceleration"`
	SprintSpeed             *int     `gorm:"column:sprint_speed" json:"sprint_speed"`
	Positioning             *int     `gorm:"column:positioning" json:"positioning"`
	Finishing               *int     `gorm:"column:finishing" json:"finishing"`
	ShotPower               *int     `gorm:"column:shot_power" json:"shot_power"`
	LongShots               *int     `gorm:"column:long_shots" json:"long_shots"`
	Volleys                 *int     `gorm:"column:volleys" json:"volleys"`
	Penalties               *int     `gorm:"column:penalties" json:"penalties"`
	Vision                  *int     `gorm:"column:vision" json:"vision"`
	Crossing                *int     `gorm:"column:crossing" json:"crossing"`
	FreeKickAccuracy        *int     `gorm:"column:free_kick_accuracy" json:"free_kick_accuracy"`
	ShortPassing            *int     `gorm:"column:short_passing" json:"short_passing"`
	LongPassing             *int     `gorm:"column:long_passing" json:"long_passing"`
	Curve                   *int     `gorm:"column:curve" json:"curve"`
	Dribbling               *int     `gorm:"column:dribbling" json:"dribbling"`
	Agility                 *int     `gorm:"column:agility" json:"agility"`
	Balance                 *int     `gorm:"column:balance" json:"balance"`
	Reactions               *int     `gorm:"column:reactions" json:"reactions"`
	BallControl             *int     `gorm:"column:ball_control" json:"ball_control"`
	Composure               *int     `gorm:"column:composure" json:"composure"`
	Interceptions           *int     `gorm:"column:interceptions" json:"interceptions"`
	HeadingAccuracy         *int     `gorm:"column:heading_accuracy" json:"heading_accuracy"`
	DefAwareness            *int     `gorm:"column:def_awareness" json:"def_awareness"`
	StandingTackle          *int     `gorm:"column:standing_tackle" json:"standing_tackle"`
	SlidingTackle           *int     `gorm:"column:sliding_tackle" json:"sliding_tackle"`
	Jumping                 *int     `gorm:"column:jumping" json:"jumping"`
	Stamina                 *int     `gorm:"column:stamina" json:"stamina"`
	Strength                *int     `gorm:"column:strength" json:"strength"`
	Aggression              *int     `gorm:"column:aggression" json:"aggression"`
	WeakFoot                *int     `gorm:"column:weak_foot" json:"weak_foot"`
	SkillMoves              *int     `gorm:"column:skill_moves" json:"skill_moves"`
	PreferredFoot           *string  `gorm:"column:preferred_foot" json:"preferred_foot"`
	League                  *string  `gorm:"column:league" json:"league"`
	Team                    *string  `gorm:"column:team" json:"team"`
	WeightInKg              *float64 `gorm:"column:weight_in_kg" json:"weight_in_kg"`
	Age                     *int     `gorm:"column:age;index" json:"age"`
	ImageURL                *string  `gorm:"column:image_url" json:"image_url"`
	CreatedAt               time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName specifies the table name for GORM
func (Player) TableName() string {
	return "players"
}

// PlayerWithCompatibility flattens a player with its compatibility record for
// search and team-analysis responses. Compatibility is null when the player
// has never been scored.
type PlayerWithCompatibility struct {
	Player
	Compatibility *PositionCompatibility `json:"compatibility"`
}
