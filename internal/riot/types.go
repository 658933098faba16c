package riot

// Account is the response from /riot/account/v1/accounts/by-riot-id.
type Account struct {
	PUUID    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

// MatchResponse is the response from /lol/match/v5/matches/{matchId}.
type MatchResponse struct {
	Metadata MatchMetadata `json:"metadata"`
	Info     MatchInfo     `json:"info"`
}

type MatchMetadata struct {
	MatchID      string   `json:"matchId"`
	Participants []string `json:"participants"` // PUUIDs
}

type MatchInfo struct {
	GameCreation int64         `json:"gameCreation"`
	GameDuration int           `json:"gameDuration"`
	GameVersion  string        `json:"gameVersion"`
	QueueID      int           `json:"queueId"`
	Participants []Participant `json:"participants"`
}

// Participant is one player's slice of a match payload. Optional stats are
// pointers so that fields the API omitted stay distinguishable from real
// zeroes; the extractor drops nil fields instead of defaulting them. The
// seven item slots and itemsPurchased are plain ints: they default to 0
// when absent. Fields the extractor handles structurally (identity, team,
// challenges) are tagged stat:"-".
type Participant struct {
	ParticipantID int    `json:"participantId" stat:"-"`
	PUUID         string `json:"puuid" stat:"-"`
	TeamID        int    `json:"teamId" stat:"-"`

	// Identity & context
	ChampionID         *int    `json:"championId"`
	ChampionName       *string `json:"championName"`
	IndividualPosition *string `json:"individualPosition"`
	Lane               *string `json:"lane"`
	TeamPosition       *string `json:"teamPosition"`

	// Outcome
	Win                       *bool `json:"win"`
	GameEndedInSurrender      *bool `json:"gameEndedInSurrender"`
	GameEndedInEarlySurrender *bool `json:"gameEndedInEarlySurrender"`

	// Combat
	Kills                          *int `json:"kills"`
	Deaths                         *int `json:"deaths"`
	Assists                        *int `json:"assists"`
	KillingSprees                  *int `json:"killingSprees"`
	DoubleKills                    *int `json:"doubleKills"`
	TripleKills                    *int `json:"tripleKills"`
	QuadraKills                    *int `json:"quadraKills"`
	PentaKills                     *int `json:"pentaKills"`
	FirstBloodKill                 *bool `json:"firstBloodKill"`
	FirstBloodAssist               *bool `json:"firstBloodAssist"`
	TotalDamageDealtToChampions    *int `json:"totalDamageDealtToChampions"`
	TotalDamageDealt               *int `json:"totalDamageDealt"`
	DamageDealtToBuildings         *int `json:"damageDealtToBuildings"`
	DamageDealtToObjectives        *int `json:"damageDealtToObjectives"`
	DamageDealtToTurrets           *int `json:"damageDealtToTurrets"`
	TotalDamageTaken               *int `json:"totalDamageTaken"`
	DamageSelfMitigated            *int `json:"damageSelfMitigated"`
	MagicDamageDealt               *int `json:"magicDamageDealt"`
	MagicDamageDealtToChampions    *int `json:"magicDamageDealtToChampions"`
	MagicDamageTaken               *int `json:"magicDamageTaken"`
	PhysicalDamageDealt            *int `json:"physicalDamageDealt"`
	PhysicalDamageDealtToChampions *int `json:"physicalDamageDealtToChampions"`
	PhysicalDamageTaken            *int `json:"physicalDamageTaken"`
	TrueDamageDealt                *int `json:"trueDamageDealt"`
	TrueDamageDealtToChampions     *int `json:"trueDamageDealtToChampions"`
	TrueDamageTaken                *int `json:"trueDamageTaken"`
	TotalDamageShieldedOnTeammates *int `json:"totalDamageShieldedOnTeammates"`
	TotalHeal                      *int `json:"totalHeal"`
	TotalHealsOnTeammates          *int `json:"totalHealsOnTeammates"`
	TotalTimeSpentDead             *int `json:"totalTimeSpentDead"`
	LongestTimeSpentLiving         *int `json:"longestTimeSpentLiving"`

	// Gold & economy
	GoldEarned  *int `json:"goldEarned"`
	GoldSpent   *int `json:"goldSpent"`
	BountyLevel *int `json:"bountyLevel"`

	// Farming
	TotalMinionsKilled           *int `json:"totalMinionsKilled"`
	NeutralMinionsKilled         *int `json:"neutralMinionsKilled"`
	TotalAllyJungleMinionsKilled *int `json:"totalAllyJungleMinionsKilled"`
	TotalEnemyJungleMinionsKilled *int `json:"totalEnemyJungleMinionsKilled"`

	// Vision
	VisionScore             *int `json:"visionScore"`
	WardsPlaced             *int `json:"wardsPlaced"`
	WardsKilled             *int `json:"wardsKilled"`
	VisionWardsBoughtInGame *int `json:"visionWardsBoughtInGame"`
	SightWardsBoughtInGame  *int `json:"sightWardsBoughtInGame"`

	// Objectives
	TurretKills             *int  `json:"turretKills"`
	TurretTakedowns         *int  `json:"turretTakedowns"`
	TurretsLost             *int  `json:"turretsLost"`
	InhibitorKills          *int  `json:"inhibitorKills"`
	InhibitorTakedowns      *int  `json:"inhibitorTakedowns"`
	InhibitorsLost          *int  `json:"inhibitorsLost"`
	BaronKills              *int  `json:"baronKills"`
	DragonKills             *int  `json:"dragonKills"`
	ObjectivesStolen        *int  `json:"objectivesStolen"`
	ObjectivesStolenAssists *int  `json:"objectivesStolenAssists"`
	FirstTowerKill          *bool `json:"firstTowerKill"`
	FirstTowerAssist        *bool `json:"firstTowerAssist"`

	// Pings
	OnMyWayPings       *int `json:"onMyWayPings"`
	RetreatPings       *int `json:"retreatPings"`
	GetBackPings       *int `json:"getBackPings"`
	DangerPings        *int `json:"dangerPings"`
	EnemyMissingPings  *int `json:"enemyMissingPings"`
	EnemyVisionPings   *int `json:"enemyVisionPings"`
	PushPings          *int `json:"pushPings"`
	CommandPings       *int `json:"commandPings"`
	NeedVisionPings    *int `json:"needVisionPings"`
	VisionClearedPings *int `json:"visionClearedPings"`
	HoldPings          *int `json:"holdPings"`

	// Items: slots are always populated, absent means 0.
	Item0          int `json:"item0"`
	Item1          int `json:"item1"`
	Item2          int `json:"item2"`
	Item3          int `json:"item3"`
	Item4          int `json:"item4"`
	Item5          int `json:"item5"`
	Item6          int `json:"item6"`
	ItemsPurchased int `json:"itemsPurchased"`

	// Misc / experience
	TimePlayed      *int `json:"timePlayed"`
	ChampExperience *int `json:"champExperience"`
	ChampLevel      *int `json:"champLevel"`

	Challenges Challenges `json:"challenges" stat:"-"`
}

// Challenges is the nested challenges sub-structure. Unlike the top-level
// stats these are value fields: anything the API omitted reads as 0, which
// is the documented default for challenge metrics. Riot serves most of
// them as floats regardless of semantics, so float64 throughout.
type Challenges struct {
	KDA                  float64 `json:"kda"`
	DamagePerMinute      float64 `json:"damagePerMinute"`
	TeamDamagePercentage float64 `json:"teamDamagePercentage"`

	GoldPerMinute float64 `json:"goldPerMinute"`
	GoldShare     float64 `json:"goldShare"`

	CSPerMinute                  float64 `json:"csPerMinute"`
	MaxCsAdvantageOnLaneOpponent float64 `json:"maxCsAdvantageOnLaneOpponent"`
	JungleCsBefore10Minutes      float64 `json:"jungleCsBefore10Minutes"`

	VisionScorePerMinute             float64 `json:"visionScorePerMinute"`
	VisionScoreAdvantageLaneOpponent float64 `json:"visionScoreAdvantageLaneOpponent"`
	WardTakedowns                    float64 `json:"wardTakedowns"`
	WardTakedownsBefore20M           float64 `json:"wardTakedownsBefore20M"`
	WardsGuarded                     float64 `json:"wardsGuarded"`
	StealthWardsPlaced               float64 `json:"stealthWardsPlaced"`

	DragonTakedowns                  float64 `json:"dragonTakedowns"`
	ElderDragonMultikills            float64 `json:"elderDragonMultikills"`
	ElderDragonKillsWithOpposingSoul float64 `json:"elderDragonKillsWithOpposingSoul"`
	TeamBaronKills                   float64 `json:"teamBaronKills"`
	TeamElderDragonKills             float64 `json:"teamElderDragonKills"`
	TeamRiftHeraldKills              float64 `json:"teamRiftHeraldKills"`
	RiftHeraldTakedowns              float64 `json:"riftHeraldTakedowns"`
	TurretPlatesTaken                float64 `json:"turretPlatesTaken"`
	TurretsTakenWithRiftHerald       float64 `json:"turretsTakenWithRiftHerald"`
	FirstTurretKilled                float64 `json:"firstTurretKilled"`
	FirstTurretKilledTime            float64 `json:"firstTurretKilledTime"`
	QuickFirstTurret                 float64 `json:"quickFirstTurret"`

	DodgeSkillShotsSmallWindow          float64 `json:"dodgeSkillShotsSmallWindow"`
	SkillshotsHit                       float64 `json:"skillshotsHit"`
	TookLargeDamageSurvived             float64 `json:"tookLargeDamageSurvived"`
	PickKillWithAlly                    float64 `json:"pickKillWithAlly"`
	SoloKills                           float64 `json:"soloKills"`
	QuickSoloKills                      float64 `json:"quickSoloKills"`
	UnseenRecalls                       float64 `json:"unseenRecalls"`
	GameLength                          float64 `json:"gameLength"`
	OutnumberedKills                    float64 `json:"outnumberedKills"`
	EarlyLaningPhaseGoldExpAdvantage    float64 `json:"earlyLaningPhaseGoldExpAdvantage"`
	EffectiveHealAndShielding           float64 `json:"effectiveHealAndShielding"`
	MaxLevelLeadLaneOpponent            float64 `json:"maxLevelLeadLaneOpponent"`
	Takedowns                           float64 `json:"takedowns"`
	TakedownsAfterGainingLevelAdvantage float64 `json:"takedownsAfterGainingLevelAdvantage"`
	TakedownsBeforeJungleMinionSpawn    float64 `json:"takedownsBeforeJungleMinionSpawn"`
	HadOpenNexus                        float64 `json:"hadOpenNexus"`
	VoidMonsterKill                     float64 `json:"voidMonsterKill"`
}

// TimelineResponse is the response from
// /lol/match/v5/matches/{matchId}/timeline.
type TimelineResponse struct {
	Metadata MatchMetadata `json:"metadata"`
	Info     TimelineInfo  `json:"info"`
}

type TimelineInfo struct {
	FrameInterval int                   `json:"frameInterval"`
	Participants  []TimelineParticipant `json:"participants"`
	Frames        []Frame               `json:"frames"`
}

// TimelineParticipant maps a PUUID to the numeric participant id used by
// frames and events within this timeline.
type TimelineParticipant struct {
	ParticipantID int    `json:"participantId"`
	PUUID         string `json:"puuid"`
}

// Frame is one per-minute snapshot of all participants plus the events
// that occurred since the previous frame.
type Frame struct {
	Timestamp         int64                       `json:"timestamp"`
	ParticipantFrames map[string]ParticipantFrame `json:"participantFrames"` // keyed by stringified participant id
	Events            []Event                     `json:"events"`
}

// ParticipantFrame is one participant's state within a frame. State fields
// are pointers: a frame that lacks them must not read as zero gold/xp.
type ParticipantFrame struct {
	TotalGold                     *int      `json:"totalGold"`
	XP                            *int      `json:"xp"`
	Level                         *int      `json:"level"`
	MinionsKilled                 *int      `json:"minionsKilled"`
	JungleMinionsKilled           *int      `json:"jungleMinionsKilled"`
	TotalAllyJungleMinionsKilled  *int      `json:"totalAllyJungleMinionsKilled"`
	TotalEnemyJungleMinionsKilled *int      `json:"totalEnemyJungleMinionsKilled"`
	Position                      *Position `json:"position"`
}

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Event is the union of the timeline event fields the aggregation engine
// consumes; irrelevant fields for a given type stay at their zero values.
type Event struct {
	Type                    string `json:"type"`
	Timestamp               int64  `json:"timestamp"`
	ParticipantID           int    `json:"participantId"`
	ItemID                  int    `json:"itemId"`
	SkillSlot               int    `json:"skillSlot"`
	KillerID                int    `json:"killerId"`
	VictimID                int    `json:"victimId"`
	CreatorID               int    `json:"creatorId"`
	AssistingParticipantIDs []int  `json:"assistingParticipantIds"`
	WardType                string `json:"wardType"`
	BuildingType            string `json:"buildingType"`
	MonsterType             string `json:"monsterType"`
}

// Timeline event types the aggregation engine cares about.
const (
	EventChampionKill         = "CHAMPION_KILL"
	EventWardPlaced           = "WARD_PLACED"
	EventWardKill             = "WARD_KILL"
	EventItemPurchased        = "ITEM_PURCHASED"
	EventSkillLevelUp         = "SKILL_LEVEL_UP"
	EventTurretPlateDestroyed = "TURRET_PLATE_DESTROYED"
	EventBuildingKill         = "BUILDING_KILL"
	EventEliteMonsterKill     = "ELITE_MONSTER_KILL"
)

// Elite monster subtypes reported by ELITE_MONSTER_KILL events.
const (
	MonsterDragon       = "DRAGON"
	MonsterElderDragon  = "ELDER_DRAGON"
	MonsterBaron        = "BARON_NASHOR"
	MonsterRiftHerald   = "RIFTHERALD"
	MonsterVoidGrub     = "VOIDGRUB"
	MonsterVoidScuttler = "VOIDSCUTTLER"
)

const (
	// BuildingTower marks full tower kills within BUILDING_KILL events.
	BuildingTower = "TOWER_BUILDING"

	// ItemControlWard is the purchasable control ward.
	ItemControlWard = 2055

	// QueueRankedSolo is the only queue type in scope.
	QueueRankedSolo = 420
)
