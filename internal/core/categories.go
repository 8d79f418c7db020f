package core

// Category is a static immutable record from one of the two closed sets.
// The sets are not user-extensible.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// Account metadata for the two fixed accounts.
type Account struct {
	ID   AccountID `json:"id"`
	Name string    `json:"name"`
	Icon string    `json:"icon"`
}

var ExpenseCategories = []Category{
	{ID: "food", Name: "Еда", Icon: "🍔"},
	{ID: "transport", Name: "Транспорт", Icon: "🚕"},
	{ID: "shopping", Name: "Покупки", Icon: "🛍️"},
	{ID: "girlfriend", Name: "Девушка", Icon: "💕"},
	{ID: "entertainment", Name: "Развлечения", Icon: "🎬"},
	{ID: "health", Name: "Здоровье", Icon: "💊"},
	{ID: "home", Name: "Дом", Icon: "🏠"},
	{ID: "rent", Name: "Аренда", Icon: "🔑"},
	{ID: "credits", Name: "Кредиты", Icon: "🏦"},
	{ID: "subscriptions", Name: "Подписки", Icon: "📱"},
	{ID: "other", Name: "Другое", Icon: "📦"},
}

var IncomeCategories = []Category{
	{ID: "salary", Name: "Зарплата", Icon: "💰"},
	{ID: "freelance", Name: "Фриланс", Icon: "💻"},
	{ID: "gift", Name: "Подарок", Icon: "🎁"},
	{ID: "investment", Name: "Инвестиции", Icon: "📈"},
	{ID: "refund", Name: "Возврат", Icon: "↩️"},
	{ID: "other", Name: "Другое", Icon: "💵"},
}

var Accounts = []Account{
	{ID: AccountCurrent, Name: "Текущий", Icon: "💳"},
	{ID: AccountSavings, Name: "Накопления", Icon: "🏦"},
}

var transferCategory = Category{ID: "transfer", Name: "Перевод", Icon: "↔️"}

// ResolveCategory looks up a category id within the set matching the
// transaction type. Transfers always resolve to the fixed transfer
// sentinel; an unrecognized id resolves to the "other" sentinel of the
// matching set. It never fails.
func ResolveCategory(id string, typ TransactionType) Category {
	if typ == Transfer {
		return transferCategory
	}
	set := ExpenseCategories
	if typ == Income {
		set = IncomeCategories
	}
	for _, c := range set {
		if c.ID == id {
			return c
		}
	}
	for _, c := range set {
		if c.ID == "other" {
			return c
		}
	}
	// Closed sets always carry an "other" entry; this is unreachable.
	return Category{ID: "other", Name: "Другое", Icon: "📦"}
}

// AccountByID returns account metadata, falling back to the current
// account for unknown ids.
func AccountByID(id AccountID) Account {
	for _, a := range Accounts {
		if a.ID == id {
			return a
		}
	}
	return Accounts[0]
}
