package backend

// TokenPair is the JWT pair issued by the users endpoints. Refresh is empty
// on refresh responses, which only rotate the access token.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// Credits is the authenticated user's balance.
type Credits struct {
	Username string `json:"username"`
	Credits  int    `json:"credits"`
}

// Achievement is one entry of the user's achievement progress.
type Achievement struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Progress int    `json:"progress"`
	Target   int    `json:"target"`
	Unlocked bool   `json:"unlocked"`
}

// Pack describes a purchasable card pack.
type Pack struct {
	ID            int            `json:"id"`
	Name          string         `json:"name"`
	Slug          string         `json:"slug"`
	Description   string         `json:"description"`
	Price         int            `json:"price"`
	CardsPerPack  int            `json:"cards_per_pack"`
	RarityWeights []RarityWeight `json:"rarity_weights"`
}

// RarityWeight is the draw weight of one rarity inside a pack.
type RarityWeight struct {
	Rarity string  `json:"rarity"`
	Weight float64 `json:"weight"`
}

// PackPurchase is the result of opening a pack: the drawn cards (raw records,
// normalized by the caller) and the remaining credit balance.
type PackPurchase struct {
	Credits  int `json:"credits"`
	Purchase struct {
		ID        int    `json:"id"`
		CreatedAt string `json:"created_at"`
	} `json:"purchase"`
	Cards []map[string]any `json:"cards"`
}

// QuizTheme is one quiz topic.
type QuizTheme struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Slug          string `json:"slug"`
	QuestionCount int    `json:"question_count"`
}

// QuizAnswer is one selectable answer of a quiz question.
type QuizAnswer struct {
	ID        int    `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// QuizQuestion is one question with its answers, ordered as served.
type QuizQuestion struct {
	ID          int          `json:"id"`
	Text        string       `json:"text"`
	Explanation string       `json:"explanation"`
	Answers     []QuizAnswer `json:"answers"`
}

// Notification is one exchange notification for the user.
type Notification struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
}
