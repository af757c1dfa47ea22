// Package tarot holds the static card deck and spread drawing.
package tarot

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"

	"falim/pkg/domain"
)

// ErrUnknownSpread is returned for a spread type outside the supported set.
var ErrUnknownSpread = errors.New("unknown spread type")

// deck is the immutable major arcana reference table, loaded once at process
// start and never persisted per user.
var deck = []domain.TarotCard{
	{ID: 0, Name: "The Fool", NameTR: "Deli", Suit: "major", MeaningUpright: "Yeni başlangıçlar, özgürlük, spontanlık", MeaningReversed: "Dikkatsizlik, savrukluk, riskten kaçınma", Description: "Bilinmeyene doğru atılan ilk adım.", Image: "major_00"},
	{ID: 1, Name: "The Magician", NameTR: "Büyücü", Suit: "major", MeaningUpright: "İrade gücü, yaratıcılık, beceri", MeaningReversed: "Manipülasyon, kararsızlık, kötüye kullanılan güç", Description: "Eldeki kaynakları ustaca birleştirme.", Image: "major_01"},
	{ID: 2, Name: "The High Priestess", NameTR: "Azize", Suit: "major", MeaningUpright: "Sezgi, gizli bilgi, iç ses", MeaningReversed: "Bastırılmış sezgi, yüzeysellik, sırlar", Description: "Görünenin ardındaki bilgeliği temsil eder.", Image: "major_02"},
	{ID: 3, Name: "The Empress", NameTR: "İmparatoriçe", Suit: "major", MeaningUpright: "Bereket, şefkat, doğurganlık", MeaningReversed: "Bağımlılık, aşırı korumacılık, tıkanıklık", Description: "Doğanın ve üretkenliğin kartı.", Image: "major_03"},
	{ID: 4, Name: "The Emperor", NameTR: "İmparator", Suit: "major", MeaningUpright: "Otorite, düzen, istikrar", MeaningReversed: "Katılık, baskı, kontrol kaybı", Description: "Yapı kurma ve sınır çizme gücü.", Image: "major_04"},
	{ID: 5, Name: "The Hierophant", NameTR: "Aziz", Suit: "major", MeaningUpright: "Gelenek, öğreti, rehberlik", MeaningReversed: "Kalıplara başkaldırı, dogma, uyumsuzluk", Description: "Manevi öğretmen ve köklü değerler.", Image: "major_05"},
	{ID: 6, Name: "The Lovers", NameTR: "Aşıklar", Suit: "major", MeaningUpright: "Aşk, uyum, önemli bir seçim", MeaningReversed: "Uyumsuzluk, yanlış seçim, ayrılık", Description: "Kalbin yol ayrımındaki kararı.", Image: "major_06"},
	{ID: 7, Name: "The Chariot", NameTR: "Savaş Arabası", Suit: "major", MeaningUpright: "Zafer, kararlılık, ilerleme", MeaningReversed: "Yönsüzlük, engeller, savrulma", Description: "Zıt güçleri tek hedefe sürme iradesi.", Image: "major_07"},
	{ID: 8, Name: "Strength", NameTR: "Güç", Suit: "major", MeaningUpright: "İç güç, sabır, cesaret", MeaningReversed: "Özgüven eksikliği, sabırsızlık, zayıflık", Description: "Nazik ama sarsılmaz dayanıklılık.", Image: "major_08"},
	{ID: 9, Name: "The Hermit", NameTR: "Ermiş", Suit: "major", MeaningUpright: "İçe dönüş, arayış, bilgelik", MeaningReversed: "Yalnızlaşma, içe kapanma, kaçış", Description: "Kendi ışığıyla yol arayan gezgin.", Image: "major_09"},
	{ID: 10, Name: "Wheel of Fortune", NameTR: "Kader Çarkı", Suit: "major", MeaningUpright: "Şans, döngüler, dönüm noktası", MeaningReversed: "Talihsizlik, direnç, kontrol dışı olaylar", Description: "Değişimin kaçınılmaz döngüsü.", Image: "major_10"},
	{ID: 11, Name: "Justice", NameTR: "Adalet", Suit: "major", MeaningUpright: "Denge, dürüstlük, hak yerini bulur", MeaningReversed: "Haksızlık, sorumluluktan kaçış, yanlılık", Description: "Sebep-sonuç terazisinin kartı.", Image: "major_11"},
	{ID: 12, Name: "The Hanged Man", NameTR: "Asılan Adam", Suit: "major", MeaningUpright: "Farklı bakış açısı, teslimiyet, bekleyiş", MeaningReversed: "Boşa direnme, erteleme, fedakarlıktan kaçınma", Description: "Askıda kalmanın getirdiği aydınlanma.", Image: "major_12"},
	{ID: 13, Name: "Death", NameTR: "Ölüm", Suit: "major", MeaningUpright: "Bitiş ve yeniden doğuş, dönüşüm", MeaningReversed: "Değişime direnç, takılı kalma", Description: "Eskinin kapanıp yeninin açılması.", Image: "major_13"},
	{ID: 14, Name: "Temperance", NameTR: "Denge", Suit: "major", MeaningUpright: "Ölçülülük, uyum, sabırlı karışım", MeaningReversed: "Aşırılık, dengesizlik, acele", Description: "Zıtlıkları kaynaştırma sanatı.", Image: "major_14"},
	{ID: 15, Name: "The Devil", NameTR: "Şeytan", Suit: "major", MeaningUpright: "Bağımlılık, tutku, maddi esaret", MeaningReversed: "Zincirleri kırma, farkındalık, kurtuluş", Description: "Kendi elimizle taktığımız prangalar.", Image: "major_15"},
	{ID: 16, Name: "The Tower", NameTR: "Kule", Suit: "major", MeaningUpright: "Ani yıkım, sarsıcı gerçek, uyanış", MeaningReversed: "Ertelenen kriz, korkuyla kaçınma", Description: "Temelsiz olanın bir anda çöküşü.", Image: "major_16"},
	{ID: 17, Name: "The Star", NameTR: "Yıldız", Suit: "major", MeaningUpright: "Umut, ilham, iyileşme", MeaningReversed: "Umutsuzluk, ilham kaybı, karamsarlık", Description: "Fırtına sonrası parlayan rehber ışık.", Image: "major_17"},
	{ID: 18, Name: "The Moon", NameTR: "Ay", Suit: "major", MeaningUpright: "Sezgiler, belirsizlik, hayal gücü", MeaningReversed: "Yanılsamadan çıkış, netleşen korkular", Description: "Gölgelerin ve sezgilerin dünyası.", Image: "major_18"},
	{ID: 19, Name: "The Sun", NameTR: "Güneş", Suit: "major", MeaningUpright: "Mutluluk, başarı, canlılık", MeaningReversed: "Geçici bulutlar, ertelenmiş sevinç", Description: "Açıklığın ve neşenin en parlak kartı.", Image: "major_19"},
	{ID: 20, Name: "Judgement", NameTR: "Mahkeme", Suit: "major", MeaningUpright: "Yeniden doğuş, hesaplaşma, çağrı", MeaningReversed: "Öz eleştiri eksikliği, geçmişe takılma", Description: "Geçmişle yüzleşip yenilenme daveti.", Image: "major_20"},
	{ID: 21, Name: "The World", NameTR: "Dünya", Suit: "major", MeaningUpright: "Tamamlanma, bütünlük, başarıyla kapanan döngü", MeaningReversed: "Yarım kalmışlık, kapanmamış hesaplar", Description: "Yolculuğun doyuma ulaştığı an.", Image: "major_21"},
}

var spreadPositions = map[string][]string{
	"single":     {"Genel"},
	"three_card": {"Geçmiş", "Şimdi", "Gelecek"},
}

// Deck returns a copy of the full card list.
func Deck() []domain.TarotCard {
	out := make([]domain.TarotCard, len(deck))
	copy(out, deck)
	return out
}

// Card returns one card by id.
func Card(id int) (domain.TarotCard, bool) {
	for _, c := range deck {
		if c.ID == id {
			return c, true
		}
	}
	return domain.TarotCard{}, false
}

// Positions returns the ordered position labels for a spread type.
func Positions(spreadType string) ([]string, error) {
	positions, ok := spreadPositions[strings.ToLower(strings.TrimSpace(spreadType))]
	if !ok {
		return nil, ErrUnknownSpread
	}
	return positions, nil
}

// Draw selects cards without replacement for the spread and assigns each an
// independent uniform orientation.
func Draw(spreadType string) ([]domain.DrawnCard, error) {
	positions, err := Positions(spreadType)
	if err != nil {
		return nil, err
	}
	indexes, err := sampleWithoutReplacement(len(deck), len(positions))
	if err != nil {
		return nil, err
	}
	drawn := make([]domain.DrawnCard, 0, len(positions))
	for i, idx := range indexes {
		reversed, err := coinFlip()
		if err != nil {
			return nil, err
		}
		drawn = append(drawn, domain.DrawnCard{
			Card:     deck[idx],
			Position: positions[i],
			Reversed: reversed,
		})
	}
	return drawn, nil
}

func sampleWithoutReplacement(n, k int) ([]int, error) {
	if k > n {
		return nil, errors.New("spread larger than deck")
	}
	pool := make([]int, n)
	for i := range pool {
		pool[i] = i
	}
	out := make([]int, 0, k)
	for i := 0; i < k; i++ {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(len(pool))))
		if err != nil {
			return nil, err
		}
		pick := int(j.Int64())
		out = append(out, pool[pick])
		pool = append(pool[:pick], pool[pick+1:]...)
	}
	return out, nil
}

func coinFlip() (bool, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(2))
	if err != nil {
		return false, err
	}
	return n.Int64() == 1, nil
}
