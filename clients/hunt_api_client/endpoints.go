package hunt_api_client

const (
	// Auth endpoints
	LoginEndpoint  = "/auth/login"
	SignupEndpoint = "/auth/signup"

	// Hunt endpoints
	HuntStatusEndpoint   = "/hunt/status"
	HintEndpoint         = "/hunt/hint"
	QuestionEndpoint     = "/hunt/question"
	CodeEndpoint         = "/hunt/code"
	AnswerEndpoint       = "/hunt/answer"
	HuntProgressEndpoint = "/hunt/progress"

	// Team endpoints
	AvatarEndpoint = "/team/avatar"

	// Leaderboard endpoints
	LeaderboardEndpoint     = "/leaderboard"
	TeamProgressEndpoint    = "/leaderboard/team"
	LeaderboardPageSizeMax  = 50
	LeaderboardPageSizeDflt = 10

	// Bonus round endpoints (formatted with the round id)
	BonusStatusEndpoint      = "/bonus/%d/status"
	BonusScanEndpoint        = "/bonus/%d/scan"
	BonusAnswerEndpoint      = "/bonus/%d/answer"
	BonusWinnerEndpoint      = "/bonus/%d/winner"
	BonusLeaderboardEndpoint = "/bonus/%d/leaderboard"
	BonusEndEndpoint         = "/bonus/%d/end"

	// Admin endpoints
	AdminLoginEndpoint     = "/admin/login"
	AdminQuestionsEndpoint = "/admin/questions"
	AdminTeamsEndpoint     = "/admin/teams"
	AdminSequenceEndpoint  = "/admin/sequence/regenerate"
	AdminTimingsEndpoint   = "/admin/timings"
)
