package models

// Enumerated codes for volunteer, mentor and nonprofit attributes. Values are
// the stable snake_case codes persisted in postgres; the Parse* functions map
// the free-form display text the tabular source uses onto those codes.

// JobStatus is the state of an asynchronous job.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobComplete  JobStatus = "complete"
	JobError     JobStatus = "error"
	JobCancelled JobStatus = "cancelled"
)

// Terminal reports whether no further status transition is permitted.
func (s JobStatus) Terminal() bool {
	return s == JobComplete || s == JobError || s == JobCancelled
}

// JobType identifies the kind of work a job tracks.
type JobType string

const (
	JobTypeImportBase  JobType = "airtableImportBase"
	JobTypeExportUsers JobType = "airtableExportUsers"
	JobTypeUndoExport  JobType = "undoWorkspaceExport"
)

// ExportDestination is the identity directory users are provisioned to.
type ExportDestination string

const DestinationGoogleWorkspace ExportDestination = "googleWorkspace"

type Gender string

const (
	GenderWoman          Gender = "woman"
	GenderMan            Gender = "man"
	GenderNonBinary      Gender = "non_binary"
	GenderOther          Gender = "other"
	GenderPreferNotToSay Gender = "prefer_not_to_say"
)

func ParseGender(s string) Gender {
	switch s {
	case "Woman":
		return GenderWoman
	case "Man":
		return GenderMan
	case "Non-binary / Non-conforming":
		return GenderNonBinary
	case "Prefer to self-describe in another way":
		return GenderOther
	default:
		return GenderPreferNotToSay
	}
}

type Ethnicity string

const (
	EthnicityAsian                           Ethnicity = "asian"
	EthnicityWhiteOrCaucasian                Ethnicity = "white_or_caucasian"
	EthnicityBlackOrAfricanAmerican          Ethnicity = "black_or_african_american"
	EthnicityAmericanIndianOrAlaskaNative    Ethnicity = "american_indian_or_alaska_native"
	EthnicityNativeHawaiianOrPacificIslander Ethnicity = "native_hawaiian_or_pacific_islander"
	EthnicityLatinoOrHispanic                Ethnicity = "latino_or_hispanic"
	EthnicityOther                           Ethnicity = "other"
	EthnicityPreferNotToSay                  Ethnicity = "prefer_not_to_say"
)

func ParseEthnicity(s string) Ethnicity {
	switch s {
	case "Asian":
		return EthnicityAsian
	case "White or Caucasian":
		return EthnicityWhiteOrCaucasian
	case "Black or African American":
		return EthnicityBlackOrAfricanAmerican
	case "American Indian or Alaska Native":
		return EthnicityAmericanIndianOrAlaskaNative
	case "Native Hawaiian or Pacific Islander":
		return EthnicityNativeHawaiianOrPacificIslander
	case "Latino or Hispanic":
		return EthnicityLatinoOrHispanic
	case "Other":
		return EthnicityOther
	default:
		return EthnicityPreferNotToSay
	}
}

type AgeRange string

const (
	Age18to24 AgeRange = "18-24"
	Age25to29 AgeRange = "25-29"
	Age30to34 AgeRange = "30-34"
	Age35to39 AgeRange = "35-39"
	Age40to44 AgeRange = "40-44"
	Age45to59 AgeRange = "45-59"
	Age60to64 AgeRange = "60-64"
	AgeOver65 AgeRange = "65+"
)

func ParseAgeRange(s string) AgeRange {
	switch s {
	case "25 - 29":
		return Age25to29
	case "30 - 34":
		return Age30to34
	case "35 - 39":
		return Age35to39
	case "40 - 44":
		return Age40to44
	case "45 - 59":
		return Age45to59
	case "60 - 64":
		return Age60to64
	case "65+":
		return AgeOver65
	default:
		return Age18to24
	}
}

type Lgbt string

const (
	LgbtYes            Lgbt = "yes"
	LgbtNo             Lgbt = "no"
	LgbtAlly           Lgbt = "ally"
	LgbtPreferNotToSay Lgbt = "prefer_not_to_say"
)

func ParseLgbt(s string) Lgbt {
	switch s {
	case "Yes":
		return LgbtYes
	case "No":
		return LgbtNo
	case "No, but I identify as an LGBTQ+ Ally":
		return LgbtAlly
	default:
		return LgbtPreferNotToSay
	}
}

type Fli string

const (
	FliFirstGeneration Fli = "first_generation"
	FliLowIncome       Fli = "low_income"
	FliNeither         Fli = "neither"
	FliPreferNotToSay  Fli = "prefer_not_to_say"
)

func ParseFli(s string) Fli {
	switch s {
	case "First-generation":
		return FliFirstGeneration
	case "Low-income":
		return FliLowIncome
	case "Neither":
		return FliNeither
	default:
		return FliPreferNotToSay
	}
}

type StudentStage string

const (
	StageFreshman       StudentStage = "freshman"
	StageSophomore      StudentStage = "sophomore"
	StageJunior         StudentStage = "junior"
	StageSenior         StudentStage = "senior"
	StageMasters        StudentStage = "masters_student"
	StagePhd            StudentStage = "phd_student"
	StageRecentGraduate StudentStage = "recent_graduate"
)

func ParseStudentStage(s string) StudentStage {
	switch s {
	case "Freshman":
		return StageFreshman
	case "Sophomore":
		return StageSophomore
	case "Junior":
		return StageJunior
	case "Senior":
		return StageSenior
	case "Master's student":
		return StageMasters
	case "PhD student":
		return StagePhd
	default:
		return StageRecentGraduate
	}
}

type HearAbout string

const (
	HearAboutLinkedin     HearAbout = "linkedin"
	HearAboutUniversity   HearAbout = "university"
	HearAboutSocialImpact HearAbout = "company_social_impact_team"
	HearAboutColleague    HearAbout = "colleague"
	HearAboutMember       HearAbout = "dfg_member"
	HearAboutNonprofit    HearAbout = "nonprofit"
	HearAboutOnlineAd     HearAbout = "online_ad"
	HearAboutInstagram    HearAbout = "instagram"
	HearAboutWordOfMouth  HearAbout = "word_of_mouth"
	HearAboutBootcamp     HearAbout = "bootcamp"
	HearAboutDiscord      HearAbout = "discord_or_slack"
	HearAboutUnknown      HearAbout = "unknown"
	HearAboutOther        HearAbout = "other"
)

func ParseHearAbout(s string) HearAbout {
	switch s {
	case "Linkedin":
		return HearAboutLinkedin
	case "From my university":
		return HearAboutUniversity
	case "From my company's social impact team":
		return HearAboutSocialImpact
	case "From a colleague":
		return HearAboutColleague
	case "From a Develop for Good member":
		return HearAboutMember
	case "From a nonprofit":
		return HearAboutNonprofit
	case "Online ad":
		return HearAboutOnlineAd
	case "Instagram":
		return HearAboutInstagram
	case "Word of mouth":
		return HearAboutWordOfMouth
	case "A bootcamp":
		return HearAboutBootcamp
	case "Discord or Slack group":
		return HearAboutDiscord
	case "I don't remember":
		return HearAboutUnknown
	default:
		return HearAboutOther
	}
}

type ClientSize string

const (
	Size0        ClientSize = "0"
	Size1to5     ClientSize = "1-5"
	Size6to20    ClientSize = "6-20"
	Size21to50   ClientSize = "21-50"
	Size51to100  ClientSize = "51-100"
	Size101to500 ClientSize = "101-500"
	SizeOver500  ClientSize = "500+"
)

func ParseClientSize(s string) ClientSize {
	switch s {
	case "1-5":
		return Size1to5
	case "6-20":
		return Size6to20
	case "21-50":
		return Size21to50
	case "51-100":
		return Size51to100
	case "101-500":
		return Size101to500
	case "500+":
		return SizeOver500
	default:
		return Size0
	}
}

type ImpactCause string

const (
	CauseAnimals        ImpactCause = "animals"
	CauseCareer         ImpactCause = "career_and_professional_development"
	CauseDisasterRelief ImpactCause = "disaster_relief"
	CauseEducation      ImpactCause = "education"
	CauseEnvironment    ImpactCause = "environment_and_sustainability"
	CauseFaith          ImpactCause = "faith_and_religion"
	CauseHealth         ImpactCause = "health_and_medicine"
	CauseGlobal         ImpactCause = "global_relations"
	CausePoverty        ImpactCause = "poverty_and_hunger"
	CauseSeniors        ImpactCause = "senior_services"
	CauseJustice        ImpactCause = "justice_and_equity"
	CauseVeterans       ImpactCause = "veterans_and_military_families"
	CauseOther          ImpactCause = "other"
)

// impactCauseCodes maps the opaque provider-side record identifiers the source
// stores for impact causes onto the enumerated set.
var impactCauseCodes = map[string]ImpactCause{
	"reco1zHRYv8lTQDaI": CauseAnimals,
	"recXhhTPsuQ2PMjU4": CauseCareer,
	"recvWKilRRABCcHuI": CauseDisasterRelief,
	"recYfRNFDpm2nedjM": CauseEducation,
	"recOlWiJTppnQwnll": CauseEnvironment,
	"recix0Y5qCXYfZGRz": CauseFaith,
	"recKs8kboTORruStC": CauseHealth,
	"recEmtYMgeOlPeOVQ": CauseGlobal,
	"reczSSbvdW2NoOX2p": CausePoverty,
	"rec5dt6EVyUeIaCR7": CauseSeniors,
	"recMt9349gwuRAQXf": CauseJustice,
	"rec8cH6YTQMeYqXUh": CauseVeterans,
}

// ParseImpactCause maps a provider record code; unknown codes become Other.
func ParseImpactCause(code string) ImpactCause {
	if c, ok := impactCauseCodes[code]; ok {
		return c
	}
	return CauseOther
}

type YearsExperience string

const (
	Years2to5   YearsExperience = "2-5"
	Years6to10  YearsExperience = "6-10"
	Years11to15 YearsExperience = "11-15"
	Years16to20 YearsExperience = "16-20"
	YearsOver21 YearsExperience = "21+"
)

func ParseYearsExperience(s string) YearsExperience {
	switch s {
	case "2-5":
		return Years2to5
	case "6-10":
		return Years6to10
	case "11-15":
		return Years11to15
	case "16-20":
		return Years16to20
	default:
		return YearsOver21
	}
}

type ExperienceLevel string

const (
	LevelIntermediate     ExperienceLevel = "intermediate"
	LevelFirstManagement  ExperienceLevel = "first_level_management"
	LevelMiddleManagement ExperienceLevel = "middle_management"
	LevelSeniorOrExec     ExperienceLevel = "senior_or_executive"
)

func ParseExperienceLevel(s string) ExperienceLevel {
	switch s {
	case "First-level management":
		return LevelFirstManagement
	case "Middle management":
		return LevelMiddleManagement
	case "Senior, executive, or top-level management":
		return LevelSeniorOrExec
	default:
		return LevelIntermediate
	}
}
