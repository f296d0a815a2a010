// Package niyam holds the static catalog of daily observances. The catalog
// is immutable at runtime: items are only ever looked up, never created or
// removed. Which list applies to a user depends on their age group, derived
// from the birth year in their date of birth.
package niyam

import (
	"regexp"
	"strconv"
	"strings"
)

// Item is one trackable daily observance with its point value and labels
type Item struct {
	Key    string `json:"key"`
	En     string `json:"en"`
	Gu     string `json:"gu"`
	Points int    `json:"points"`
}

// AgeGroup selects which niyam list applies to a user
type AgeGroup string

const (
	Born2011OrLater   AgeGroup = "born_2011_or_later"
	Born1981To2010    AgeGroup = "born_1981_to_2010"
	Born1980OrEarlier AgeGroup = "born_1980_or_earlier"
)

type definition struct {
	key string
	en  string
	gu  string
}

var definitions = map[string]definition{
	"jin_pooja": {key: "jin_pooja", en: "Jin Pooja", gu: "જિન પૂજા"},
	"say_namo_jinanam_on_dhwaja_darshan": {
		key: "say_namo_jinanam_on_dhwaja_darshan",
		en:  "Say Namo Jinanam on Dhwaja Darshan",
		gu:  "ધ્વજાના દર્શન સમયે 'ણમો જિણાણં' બોલવું",
	},
	"say_nissihi_while_entering_derasar": {
		key: "say_nissihi_while_entering_derasar",
		en:  "Say Nissihi while entering Derasar",
		gu:  "દેરાસરમાં પ્રવેશ કરતી વખતે 'નિસિહિ' બોલવું",
	},
	"offer_3_pradakshinas": {
		key: "offer_3_pradakshinas",
		en:  "Offer 3 Pradakshinas",
		gu:  "૩ પ્રદક્ષિણા આપવી",
	},
	"chaityavandan":   {key: "chaityavandan", en: "Chaityavandan", gu: "ચૈત્યવંદન"},
	"guruvandan":      {key: "guruvandan", en: "Guruvandan", gu: "ગુરુવંદન"},
	"evening_darshan": {key: "evening_darshan", en: "Evening Darshan", gu: "સાંજના દર્શન"},
	"navkar_27":       {key: "navkar_27", en: "27 Navkar", gu: "૨૭ નવકાર"},
	"om_hrim_arham_27_times": {
		key: "om_hrim_arham_27_times",
		en:  "Om Hrim Arham Shri Sambhavnathay Namah Jaap 27 Times",
		gu:  "'ૐ હ્રીં અર્હં શ્રી સંભવનાથાય નમઃ' નો ૨૭ વાર જાપ",
	},
	"attend_pathshala": {key: "attend_pathshala", en: "Attend Pathshala", gu: "પાઠશાળામાં જવું"},
	"seven_navkar_sleep_eight_wake": {
		key: "seven_navkar_sleep_eight_wake",
		en:  "7 Navkar Before Sleep, 8 on Waking",
		gu:  "સૂતા ૭ અને ઊઠતાં ૮ નવકાર",
	},
	"navkarshi":           {key: "navkarshi", en: "Navkarshi", gu: "નવકારશી"},
	"give_up_night_meal":  {key: "give_up_night_meal", en: "Give Up Night Meal", gu: "રાત્રિભોજન ત્યાગ"},
	"give_up_root_vegetables": {
		key: "give_up_root_vegetables",
		en:  "Give Up Root Vegetables",
		gu:  "કંદમૂળ ત્યાગ",
	},
	"drink_water_after_washing_plate_one_meal": {
		key: "drink_water_after_washing_plate_one_meal",
		en:  "Drink Water After Washing Plate - One Meal",
		gu:  "થાળી ધોઈને પછી પાણી પીવું (એક ટાણું)",
	},
	"no_talking_while_eating_before_water": {
		key: "no_talking_while_eating_before_water",
		en:  "Don't speak while eating before drinking water.",
		gu:  "પાણી પીતા પહેલાં ભોજન દરમ્યાન બોલવું નહીં",
	},
	"eat_1_roti_without_ghee": {
		key: "eat_1_roti_without_ghee",
		en:  "Eat 1 Roti without Ghee",
		gu:  "ઘી વગર ૧ રોટલી ખાવી",
	},
	"give_up_prohibited_food": {
		key: "give_up_prohibited_food",
		en:  "Give Up Prohibited Food",
		gu:  "અભક્ષ્ય ભોજનનો ત્યાગ",
	},
	"no_tv_mobile_during_meals": {
		key: "no_tv_mobile_during_meals",
		en:  "No TV/Mobile During Meals",
		gu:  "ભોજન સમયે ટીવી/મોબાઇલનો ત્યાગ",
	},
	"feeding_any_animal": {
		key: "feeding_any_animal",
		en:  "Feeding any animal",
		gu:  "કોઈપણ પ્રાણીને ખવડાવવું",
	},
	"perform_anukampa_daan": {
		key: "perform_anukampa_daan",
		en:  "Perform Anukampa Daan",
		gu:  "અનુકંપા દાન કરવું",
	},
	"do_not_lie": {key: "do_not_lie", en: "Do Not Lie", gu: "જૂઠું ન બોલવું"},
	"seek_forgiveness_for_anger_at_family": {
		key: "seek_forgiveness_for_anger_at_family",
		en:  "Seek Forgiveness for Getting Angry at Family Member",
		gu:  "પરિવારના સભ્ય પર ગુસ્સો કરવા બદલ ક્ષમા માંગવી",
	},
	"do_not_use_abusive_words": {
		key: "do_not_use_abusive_words",
		en:  "Do Not Use Abusive Words",
		gu:  "અપશબ્દ ન બોલવા",
	},
	"praise_family_member_for_good_deed": {
		key: "praise_family_member_for_good_deed",
		en:  "Praise Family member for any good deed/behavior",
		gu:  "પરિવારના સભ્યના સારા કાર્ય/વર્તન માટે પ્રશંસા કરવી",
	},
	"bow_to_parents_or_photo": {
		key: "bow_to_parents_or_photo",
		en:  "Bow to Parents or Their Photo",
		gu:  "માતા-પિતા અથવા તેમના ફોટોને પ્રણામ કરવો",
	},
	"give_up_movies_web_series_tv_mobile": {
		key: "give_up_movies_web_series_tv_mobile",
		en:  "Give Up Movies/Web Series on TV/Mobile",
		gu:  "ટીવી/મોબાઇલમાં ફિલ્મ-વેબ સિરીઝનો ત્યાગ",
	},
	"give_up_bathing_soap": {
		key: "give_up_bathing_soap",
		en:  "Give Up Bathing Soap",
		gu:  "નાહવાના સાબુનો ત્યાગ",
	},
	"sit_with_family_15_min": {
		key: "sit_with_family_15_min",
		en:  "Sit with Family for 15 Minutes",
		gu:  "૧૫ મિનિટ પરિવાર સાથે બેસવું",
	},
	"no_tv_phone_11pm_to_6am": {
		key: "no_tv_phone_11pm_to_6am",
		en:  "No TV/Phone from 11 PM to 6 AM",
		gu:  "રાત્રે ૧૧ થી સવારે ૬ સુધી ટીવી/ફોન નહીં",
	},
	"ashtaprakari_pooja": {
		key: "ashtaprakari_pooja",
		en:  "Ashtaprakari Pooja",
		gu:  "અષ્ટપ્રકારી પૂજા",
	},
	"samayik": {key: "samayik", en: "Samayik", gu: "સામાયિક"},
	"jinvani_shravan_30_min": {
		key: "jinvani_shravan_30_min",
		en:  "30 Minutes of Listening to Jain Teachings",
		gu:  "૩૦ મિનિટ જિનવાણી શ્રવણ",
	},
	"navkarvali": {key: "navkarvali", en: "Navkarvali", gu: "નવકારવાળી"},
	"om_hrim_arham_jaapmala": {
		key: "om_hrim_arham_jaapmala",
		en:  "Om Hrim Arham Shri Sambhavnathay Namah Jaapmala",
		gu:  "'ૐ હ્રીં અર્હં શ્રી સંભવનાથાય નમઃ' ની જાપમાળા",
	},
	"give_up_tobacco_smoking_vape": {
		key: "give_up_tobacco_smoking_vape",
		en:  "Give Up Tobacco/Smoking/Vape",
		gu:  "તમાકુ/ધૂમ્રપાન/વેપનો ત્યાગ",
	},
	"do_not_speak_ill_of_others": {
		key: "do_not_speak_ill_of_others",
		en:  "Do Not Speak Ill of Others",
		gu:  "પરનિંદા ન કરવી",
	},
	"give_up_perfume": {key: "give_up_perfume", en: "Give Up Perfume", gu: "પરફ્યુમનો ત્યાગ"},
	"silence_1_hour":  {key: "silence_1_hour", en: "1 Hour Silence", gu: "૧ કલાક મૌન"},
	"restrict_social_media_1_hour": {
		key: "restrict_social_media_1_hour",
		en:  "Restrict Social Media usage to 1 Hour",
		gu:  "સોશિયલ મીડિયા વપરાશ ૧ કલાક સુધી મર્યાદિત કરવો",
	},
	"rai_or_devasiya_pratikraman": {
		key: "rai_or_devasiya_pratikraman",
		en:  "Rai or Devasiya Pratikraman",
		gu:  "રાઈ અથવા દેવસિય પ્રતિક્રમણ",
	},
	"drink_boiled_water": {key: "drink_boiled_water", en: "Drink Boiled Water", gu: "ઉકાળેલું પાણી પીવું"},
}

type ageGroupRow struct {
	key    string
	points int
}

var byAgeGroup = map[AgeGroup][]ageGroupRow{
	Born2011OrLater: {
		{"jin_pooja", 20},
		{"say_namo_jinanam_on_dhwaja_darshan", 20},
		{"say_nissihi_while_entering_derasar", 20},
		{"offer_3_pradakshinas", 20},
		{"chaityavandan", 30},
		{"guruvandan", 30},
		{"evening_darshan", 20},
		{"navkar_27", 20},
		{"om_hrim_arham_27_times", 20},
		{"attend_pathshala", 20},
		{"seven_navkar_sleep_eight_wake", 20},
		{"navkarshi", 20},
		{"give_up_night_meal", 40},
		{"give_up_root_vegetables", 30},
		{"drink_water_after_washing_plate_one_meal", 30},
		{"no_talking_while_eating_before_water", 20},
		{"eat_1_roti_without_ghee", 20},
		{"give_up_prohibited_food", 40},
		{"no_tv_mobile_during_meals", 20},
		{"feeding_any_animal", 20},
		{"perform_anukampa_daan", 20},
		{"do_not_lie", 30},
		{"seek_forgiveness_for_anger_at_family", 20},
		{"do_not_use_abusive_words", 20},
		{"praise_family_member_for_good_deed", 20},
		{"bow_to_parents_or_photo", 20},
		{"give_up_movies_web_series_tv_mobile", 30},
		{"give_up_bathing_soap", 20},
		{"sit_with_family_15_min", 20},
		{"no_tv_phone_11pm_to_6am", 20},
	},
	Born1981To2010: {
		{"jin_pooja", 20},
		{"offer_3_pradakshinas", 20},
		{"chaityavandan", 30},
		{"guruvandan", 20},
		{"samayik", 40},
		{"jinvani_shravan_30_min", 30},
		{"navkarvali", 20},
		{"om_hrim_arham_jaapmala", 20},
		{"attend_pathshala", 20},
		{"seven_navkar_sleep_eight_wake", 10},
		{"navkarshi", 20},
		{"give_up_night_meal", 30},
		{"give_up_root_vegetables", 20},
		{"drink_water_after_washing_plate_one_meal", 20},
		{"no_talking_while_eating_before_water", 20},
		{"give_up_prohibited_food", 30},
		{"give_up_tobacco_smoking_vape", 20},
		{"no_tv_mobile_during_meals", 20},
		{"seek_forgiveness_for_anger_at_family", 20},
		{"do_not_use_abusive_words", 20},
		{"do_not_speak_ill_of_others", 20},
		{"praise_family_member_for_good_deed", 20},
		{"bow_to_parents_or_photo", 20},
		{"give_up_movies_web_series_tv_mobile", 40},
		{"give_up_bathing_soap", 20},
		{"give_up_perfume", 20},
		{"silence_1_hour", 30},
		{"sit_with_family_15_min", 20},
		{"restrict_social_media_1_hour", 40},
		{"no_tv_phone_11pm_to_6am", 20},
	},
	Born1980OrEarlier: {
		{"jin_pooja", 20},
		{"ashtaprakari_pooja", 40},
		{"offer_3_pradakshinas", 20},
		{"chaityavandan", 20},
		{"guruvandan", 20},
		{"rai_or_devasiya_pratikraman", 40},
		{"samayik", 40},
		{"jinvani_shravan_30_min", 30},
		{"navkarvali", 20},
		{"om_hrim_arham_jaapmala", 20},
		{"attend_pathshala", 20},
		{"seven_navkar_sleep_eight_wake", 20},
		{"navkarshi", 20},
		{"give_up_night_meal", 30},
		{"give_up_root_vegetables", 20},
		{"drink_water_after_washing_plate_one_meal", 30},
		{"no_talking_while_eating_before_water", 20},
		{"drink_boiled_water", 30},
		{"give_up_prohibited_food", 20},
		{"give_up_tobacco_smoking_vape", 20},
		{"seek_forgiveness_for_anger_at_family", 20},
		{"do_not_use_abusive_words", 20},
		{"do_not_speak_ill_of_others", 20},
		{"praise_family_member_for_good_deed", 20},
		{"bow_to_parents_or_photo", 20},
		{"give_up_movies_web_series_tv_mobile", 20},
		{"give_up_bathing_soap", 20},
		{"silence_1_hour", 20},
		{"sit_with_family_15_min", 20},
		{"restrict_social_media_1_hour", 20},
	},
}

var (
	dobYearFirst = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	dobDayFirst  = regexp.MustCompile(`^(\d{2})-(\d{2})-(\d{4})$`)
)

// BirthYearFromDOB extracts the birth year from a dob in either YYYY-MM-DD
// or DD-MM-YYYY form. Returns 0 when the dob is blank or unrecognized.
func BirthYearFromDOB(dob string) int {
	trimmed := strings.TrimSpace(dob)
	if trimmed == "" {
		return 0
	}

	if m := dobYearFirst.FindStringSubmatch(trimmed); m != nil {
		year, _ := strconv.Atoi(m[1])
		return year
	}
	if m := dobDayFirst.FindStringSubmatch(trimmed); m != nil {
		year, _ := strconv.Atoi(m[3])
		return year
	}
	return 0
}

// AgeGroupForDOB maps a dob to its age band. An unparseable dob falls back
// to the middle band, matching the mobile client.
func AgeGroupForDOB(dob string) AgeGroup {
	year := BirthYearFromDOB(dob)
	if year == 0 {
		return Born1981To2010
	}
	if year >= 2011 {
		return Born2011OrLater
	}
	if year >= 1981 {
		return Born1981To2010
	}
	return Born1980OrEarlier
}

// ListForAgeGroup returns the ordered niyam list for an age band
func ListForAgeGroup(group AgeGroup) []Item {
	rows, ok := byAgeGroup[group]
	if !ok {
		rows = byAgeGroup[Born1981To2010]
	}

	items := make([]Item, 0, len(rows))
	for _, row := range rows {
		def := definitions[row.key]
		items = append(items, Item{Key: def.key, En: def.en, Gu: def.gu, Points: row.points})
	}
	return items
}

// ListForDOB returns the niyam list for the age band derived from dob
func ListForDOB(dob string) []Item {
	return ListForAgeGroup(AgeGroupForDOB(dob))
}

// AgeGroupLabel returns the display name for an age band
func AgeGroupLabel(group AgeGroup) string {
	switch group {
	case Born2011OrLater:
		return "Sambhav Bal Jyoti"
	case Born1980OrEarlier:
		return "Sambhav Gaurav"
	default:
		return "Sambhav Yuva Shakti"
	}
}

// Points sums the point values of the checked items in list
func Points(checked map[string]bool, list []Item) int {
	total := 0
	for _, item := range list {
		if checked[item.Key] {
			total += item.Points
		}
	}
	return total
}
