// Package fixture writes a small, self-consistent dictionary bundle and the
// demo voice bundle. Tests use them as golden resources and cmd/mkvoice
// writes them for local experiments.
package fixture

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ieee0824/yomiage-go/acoustic"
	"github.com/ieee0824/yomiage-go/label"
	"github.com/ieee0824/yomiage-go/lexicon"
)

// Connection ids used by the lexicon.
const (
	idBoundary = iota // BOS/EOS
	idNoun
	idParticle
	idAuxiliary
	idSymbol
	idAdjective
	idPrefix
	idVerb
	idUnknown
	idInterjection
	numIDs
)

// Lexicon is the demo lexicon in bundle CSV form.
const Lexicon = `# surface,left,right,cost,pos,pos1,pos2,pos3,ctype,cform,base,reading,pronunciation,accent/moras,chain
今日,1,1,3000,名詞,副詞可能,*,*,*,*,今日,キョウ,キョー,1/2,C1
今,1,1,4000,名詞,副詞可能,*,*,*,*,今,イマ,イマ,1/2,C1
日,1,1,4500,名詞,一般,*,*,*,*,日,ヒ,ヒ,0/1,C1
天気,1,1,3000,名詞,一般,*,*,*,*,天気,テンキ,テンキ,1/3,C1
東京,1,1,3000,名詞,固有名詞,地域,一般,*,*,東京,トウキョウ,トーキョー,0/4,C1
タワー,1,1,3500,名詞,一般,*,*,*,*,タワー,タワー,タワー,1/3,C1
茶,1,1,3500,名詞,一般,*,*,*,*,茶,チャ,チャ,0/1,C1
木,1,1,4000,名詞,一般,*,*,*,*,木,キ,キ,1/1,C1
雨,1,1,3500,名詞,一般,*,*,*,*,雨,アメ,アメ,1/2,C1
飴,1,1,4000,名詞,一般,*,*,*,*,飴,アメ,アメ,0/2,C1
円,1,1,3000,名詞,接尾,助数詞,*,*,*,円,エン,エン,1/2,C3
声,1,1,3500,名詞,一般,*,*,*,*,声,コエ,コエ,1/2,C1
合成,1,1,3000,名詞,サ変接続,*,*,*,*,合成,ゴウセイ,ゴーセー,0/4,C1
音声,1,1,3000,名詞,一般,*,*,*,*,音声,オンセイ,オンセー,1/4,C1
は,2,2,2000,助詞,係助詞,*,*,*,*,は,ハ,ワ,0/1,F1
が,2,2,2000,助詞,格助詞,一般,*,*,*,が,ガ,ガ,0/1,F1
を,2,2,2000,助詞,格助詞,一般,*,*,*,を,ヲ,オ,0/1,F1
の,2,2,2000,助詞,連体化,*,*,*,*,の,ノ,ノ,0/1,F1
ね,2,2,2500,助詞,終助詞,*,*,*,*,ね,ネ,ネ,0/1,F1
か,2,2,2500,助詞,終助詞,*,*,*,*,か,カ,カ,0/1,F1
です,3,3,2000,助動詞,*,*,*,特殊・デス,基本形,です,デス,デス,1/2,F2@1
ます,3,3,2000,助動詞,*,*,*,特殊・マス,基本形,ます,マス,マス,1/2,F2@1
いい,5,5,3000,形容詞,自立,*,*,形容詞・イイ,基本形,いい,イイ,イイ,1/2,*
お,6,6,3000,接頭詞,名詞接続,*,*,*,*,お,オ,オ,0/1,*
飲み,7,7,3500,動詞,自立,*,*,五段・マ行,連用形,飲む,ノミ,ノミ,1/2,*
降り,7,7,3500,動詞,自立,*,*,五段・ラ行,連用形,降る,フリ,フリ,1/2,*
こんにちは,9,9,3000,感動詞,*,*,*,*,*,こんにちは,コンニチハ,コンニチワ,0/5,*
さようなら,9,9,3000,感動詞,*,*,*,*,*,さようなら,サヨウナラ,サヨーナラ,4/5,*
はい,9,9,3500,感動詞,*,*,*,*,*,はい,ハイ,ハイ,1/2,*
。,4,4,0,記号,句点,*,*,*,*,。,*,*,*,*
、,4,4,0,記号,読点,*,*,*,*,、,*,*,*,*
.,4,4,500,記号,句点,*,*,*,*,.,*,*,*,*
",",4,4,500,記号,読点,*,*,*,*,",",*,*,*,*
?,4,4,0,記号,一般,*,*,*,*,?,*,*,*,*
!,4,4,0,記号,一般,*,*,*,*,!,*,*,*,*
`

// Matrix is the demo connection matrix.
const Matrix = `10 10
0 2 500
0 3 500
1 1 200
1 2 -300
1 3 -200
2 1 100
6 1 -300
7 3 -300
8 8 500
`

// Unknown is the demo unknown-word rule set. DEFAULT makes analysis total.
const Unknown = `DEFAULT,8,8,10000,名詞,一般,0,0
SPACE,4,4,0,記号,空白,1,0
KANJI,8,8,8000,名詞,一般,0,0
HIRAGANA,8,8,9000,名詞,一般,1,0
KATAKANA,8,8,6000,名詞,一般,1,0
ALPHA,8,8,7000,名詞,固有名詞,1,0
NUMERIC,8,8,5000,名詞,数,1,0
SYMBOL,4,4,5000,記号,一般,0,0
`

// VoiceName is the name written into the demo voice manifest.
const VoiceName = "demo"

// WriteDictionary writes the demo dictionary bundle into dir. Extra rows
// in lexicon CSV form are appended to the lexicon.
func WriteDictionary(dir, name string, extra ...string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	manifest := fmt.Sprintf("name: %s\nversion: %d\n", name, lexicon.BundleVersion)
	lex := Lexicon
	if len(extra) > 0 {
		lex += strings.Join(extra, "\n") + "\n"
	}
	files := map[string]string{
		lexicon.ManifestFile: manifest,
		lexicon.LexiconFile:  lex,
		lexicon.MatrixFile:   Matrix,
		lexicon.UnknownFile:  Unknown,
	}
	for file, body := range files {
		if err := os.WriteFile(filepath.Join(dir, file), []byte(body), 0644); err != nil {
			return err
		}
	}
	return nil
}

// WriteVoice writes the demo voice bundle into dir.
func WriteVoice(dir string) error {
	return acoustic.WriteBundle(dir, acoustic.DemoVoice(acoustic.DemoManifest(VoiceName, label.SchemaVersion)))
}

// WriteBundles writes both bundles under root and returns their paths.
func WriteBundles(root string) (dictDir, voiceDir string, err error) {
	dictDir = filepath.Join(root, "dict")
	voiceDir = filepath.Join(root, "voice")
	if err := WriteDictionary(dictDir, "demo"); err != nil {
		return "", "", err
	}
	if err := WriteVoice(voiceDir); err != nil {
		return "", "", err
	}
	return dictDir, voiceDir, nil
}
