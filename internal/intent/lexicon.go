package intent

import "unicode/utf8"

// Requirement adjectives say how a project should feel, not what it is.
// Each is replaced by technical terms that actually appear in repositories.
var fillerGroups = []struct {
	terms       []string
	substitutes []string
}{
	{[]string{"fast", "quick", "speedy", "快", "快速", "高性能", "高效"}, []string{"fast", "performance", "optimized", "speed"}},
	{[]string{"simple", "easy", "简单", "易用", "好用", "简洁"}, []string{"simple", "easy-to-use", "minimal"}},
	{[]string{"lightweight", "轻量", "轻量级"}, []string{"lightweight", "minimal"}},
	{[]string{"free", "免费", "开源"}, []string{"open-source", "free"}},
	{[]string{"stable", "reliable", "稳定", "可靠"}, []string{"stable", "production-ready", "reliable"}},
	{[]string{"powerful", "强大"}, []string{"powerful", "feature-rich"}},
}

// domainTermList expands Chinese technical terms into the English
// vocabulary GitHub repositories are described with.
var domainTermList = []struct {
	term       string
	expansions []string
}{
	{"短视频", []string{"short video"}},
	{"视频", []string{"video"}},
	{"视频播放器", []string{"video player"}},
	{"播放器", []string{"player"}},
	{"剪辑", []string{"video editing"}},
	{"直播", []string{"live streaming"}},
	{"音乐", []string{"music"}},
	{"图片", []string{"image"}},
	{"图像处理", []string{"image processing"}},
	{"图像识别", []string{"image recognition"}},
	{"人脸识别", []string{"face recognition"}},
	{"目标检测", []string{"object detection"}},
	{"文字识别", []string{"ocr"}},
	{"语音识别", []string{"speech recognition"}},
	{"语音合成", []string{"text to speech"}},
	{"自然语言处理", []string{"nlp"}},
	{"机器学习", []string{"machine learning"}},
	{"深度学习", []string{"deep learning"}},
	{"人工智能", []string{"ai"}},
	{"大模型", []string{"llm"}},
	{"向量数据库", []string{"vector database"}},
	{"知识库", []string{"knowledge base"}},
	{"知识图谱", []string{"knowledge graph"}},
	{"推荐系统", []string{"recommender system"}},
	{"聊天机器人", []string{"chatbot"}},
	{"机器人", []string{"bot"}},
	{"聊天", []string{"chat"}},
	{"即时通讯", []string{"instant messaging"}},
	{"邮件", []string{"email"}},
	{"爬虫", []string{"crawler", "scraper"}},
	{"爬虫框架", []string{"crawler framework"}},
	{"爬取", []string{"scraping"}},
	{"下载器", []string{"downloader"}},
	{"下载", []string{"download"}},
	{"搜索引擎", []string{"search engine"}},
	{"数据库", []string{"database"}},
	{"缓存", []string{"cache"}},
	{"消息队列", []string{"message queue"}},
	{"微服务", []string{"microservices"}},
	{"网关", []string{"gateway"}},
	{"代理", []string{"proxy"}},
	{"调度", []string{"scheduler"}},
	{"定时任务", []string{"cron"}},
	{"工作流", []string{"workflow"}},
	{"自动化", []string{"automation"}},
	{"监控", []string{"monitoring"}},
	{"日志", []string{"logging"}},
	{"前端", []string{"frontend"}},
	{"后端", []string{"backend"}},
	{"框架", []string{"framework"}},
	{"命令行", []string{"cli"}},
	{"终端", []string{"terminal"}},
	{"编辑器", []string{"editor"}},
	{"笔记", []string{"note-taking"}},
	{"博客", []string{"blog"}},
	{"电商", []string{"e-commerce"}},
	{"商城", []string{"e-commerce"}},
	{"支付", []string{"payment"}},
	{"登录", []string{"authentication"}},
	{"认证", []string{"authentication"}},
	{"权限", []string{"authorization"}},
	{"管理系统", []string{"admin dashboard"}},
	{"后台", []string{"admin"}},
	{"小程序", []string{"mini program"}},
	{"移动端", []string{"mobile"}},
	{"安卓", []string{"android"}},
	{"桌面", []string{"desktop"}},
	{"游戏", []string{"game"}},
	{"游戏引擎", []string{"game engine"}},
	{"可视化", []string{"visualization"}},
	{"数据可视化", []string{"data visualization"}},
	{"数据分析", []string{"data analysis"}},
	{"图表", []string{"chart"}},
	{"表格", []string{"spreadsheet"}},
	{"网盘", []string{"cloud storage"}},
	{"翻译", []string{"translation"}},
	{"区块链", []string{"blockchain"}},
	{"加密", []string{"encryption"}},
	{"压缩", []string{"compression"}},
	{"文档", []string{"documentation"}},
}

// stopwordList carries no search value in either language.
var stopwordList = []string{
	"a", "an", "the", "i", "me", "my", "we", "our", "want", "need",
	"looking", "look", "find", "for", "to", "of", "in", "on", "with",
	"and", "or", "that", "which", "is", "are", "be", "some", "any",
	"something", "please", "help", "can", "could", "would", "like",
	"good", "best", "recommend", "written", "using", "use", "based",
	"tool", "tools", "library", "libraries", "lib", "project", "projects",
	"repo", "repos", "repository", "repositories", "github",
	"我", "我们", "想", "想要", "要", "需要", "一个", "一款", "个", "的",
	"了", "找", "寻找", "推荐", "有没有", "什么", "哪些", "可以", "能",
	"用", "用于", "基于", "写", "写的", "和", "与", "或", "或者", "吗",
	"呢", "吧", "请", "帮我", "给我", "关于", "实现", "工具", "库", "项目",
	"软件", "开源项目", "语言", "做", "一些", "支持",
}

// knownLanguages is the canonical language set, in detection order.
var knownLanguages = []string{
	"python", "java", "javascript", "typescript", "go", "rust",
	"php", "c++", "c#", "swift", "kotlin", "dart",
}

// languageAliasList maps other spellings users type to a canonical name.
var languageAliasList = [][2]string{
	{"py", "python"},
	{"js", "javascript"},
	{"node", "javascript"},
	{"nodejs", "javascript"},
	{"node.js", "javascript"},
	{"ts", "typescript"},
	{"golang", "go"},
	{"cpp", "c++"},
	{"csharp", "c#"},
}

var (
	fillerTerms     = map[string][]string{}
	domainTerms     = map[string][]string{}
	stopwords       = map[string]bool{}
	languageAliases = map[string]string{}

	// maxHanTermLen is the longest Chinese table key, in runes.
	maxHanTermLen int
)

func init() {
	for _, g := range fillerGroups {
		for _, term := range g.terms {
			fillerTerms[term] = g.substitutes
		}
	}
	for _, d := range domainTermList {
		domainTerms[d.term] = d.expansions
	}
	for _, w := range stopwordList {
		stopwords[w] = true
	}
	for _, lang := range knownLanguages {
		languageAliases[lang] = lang
	}
	for _, alias := range languageAliasList {
		languageAliases[alias[0]] = alias[1]
	}

	for _, keys := range [][]string{keysOf(fillerTerms), keysOf(domainTerms), stopwordList} {
		for _, k := range keys {
			maxHanTermLen = max(maxHanTermLen, utf8.RuneCountInString(k))
		}
	}
}

func keysOf(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// canonicalLanguage returns the canonical language for a token, if any.
func canonicalLanguage(token string) (string, bool) {
	lang, ok := languageAliases[token]
	return lang, ok
}
