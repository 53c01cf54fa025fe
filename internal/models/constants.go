package models

// Коды штатов Бразилии (адрес специалиста и место оказания услуги).
var ValidStates = map[string]struct{}{
	"AC": {}, "AL": {}, "AP": {}, "AM": {}, "BA": {}, "CE": {}, "DF": {},
	"ES": {}, "GO": {}, "MA": {}, "MT": {}, "MS": {}, "MG": {}, "PA": {},
	"PB": {}, "PR": {}, "PE": {}, "PI": {}, "RJ": {}, "RN": {}, "RS": {},
	"RO": {}, "RR": {}, "SC": {}, "SP": {}, "SE": {}, "TO": {},
}

// OccupationType профессии специалистов по уходу
const (
	OccupationCaregiver        = "CI" // сиделка для пожилых
	OccupationNursingAssistant = "AE" // младшая медсестра
	OccupationNursingTech      = "TE" // техник по сестринскому делу
	OccupationNurse            = "EM" // медсестра
)

// ServiceType типы услуг
const (
	ServiceHospitalEscort = "AC" // сопровождение в больнице
	ServiceHomeEscort     = "AD" // сопровождение на дому
	ServiceDressings      = "CV" // перевязки и вакцины
	ServiceHomeCare       = "HC" // уход на дому
)

// ValidOccupations список валидных профессий
var ValidOccupations = map[string]struct{}{
	OccupationCaregiver:        {},
	OccupationNursingAssistant: {},
	OccupationNursingTech:      {},
	OccupationNurse:            {},
}

// ValidServices список валидных типов услуг
var ValidServices = map[string]struct{}{
	ServiceHospitalEscort: {},
	ServiceHomeEscort:     {},
	ServiceDressings:      {},
	ServiceHomeCare:       {},
}

// Recurrence периодичность окна доступности
const (
	RecurrenceDaily   = "D"
	RecurrenceWeekly  = "W"
	RecurrenceMonthly = "M"
)

// ValidRecurrences список валидных периодичностей
var ValidRecurrences = map[string]struct{}{
	RecurrenceDaily:   {},
	RecurrenceWeekly:  {},
	RecurrenceMonthly: {},
}

// ValidWeekDays дни недели для еженедельной периодичности
var ValidWeekDays = map[string]struct{}{
	"MON": {}, "TUE": {}, "WED": {}, "THU": {},
	"FRI": {}, "SAT": {}, "SUN": {},
}

// MaxProfessionalSkills максимум навыков у специалиста
const MaxProfessionalSkills = 3

// Границы встречного предложения относительно исходной цены.
const (
	CounterProposalMinFactor = 0.8
	CounterProposalMaxFactor = 1.2
)

// Границы оценки выполненной работы.
const (
	MinRatingGrade = 1
	MaxRatingGrade = 5
)
