package premium

import "github.com/chanforge/chanforge/internal/document"

// adFilters lists ad and tracker domains the client blocks outright
var adFilters = []string{
	"mimg.0c1q0l.cn",
	"www.googletagmanager.com",
	"www.google-analytics.com",
	"mc.usihnbcq.cn",
	"mg.g1mm3d.cn",
	"mscs.svaeuzh.cn",
	"cnzz.hhttm.top",
	"tp.vinuxhome.com",
	"cnzz.mmstat.com",
	"www.baihuillq.com",
	"s23.cnzz.com",
	"z3.cnzz.com",
	"c.cnzz.com",
	"stj.v1vo.top",
	"z12.cnzz.com",
	"img.mosflower.cn",
	"tips.gamevvip.com",
	"ehwe.yhdtns.com",
	"xdn.cqqc3.com",
	"www.jixunkyy.cn",
	"sp.chemacid.cn",
	"hm.baidu.com",
	"s9.cnzz.com",
	"z6.cnzz.com",
	"um.cavuc.com",
	"mav.mavuz.com",
	"wofwk.aoidf3.com",
	"z5.cnzz.com",
	"xc.hubeijieshikj.cn",
	"tj.tianwenhu.com",
	"xg.gars57.cn",
	"k.jinxiuzhilv.com",
	"cdn.bootcss.com",
	"ppl.xunzhuo123.com",
	"xomk.jiangjunmh.top",
	"img.xunzhuo123.com",
	"z1.cnzz.com",
	"s13.cnzz.com",
	"xg.huataisangao.cn",
	"z7.cnzz.com",
	"z2.cnzz.com",
	"s96.cnzz.com",
	"q11.cnzz.com",
	"thy.dacedsfa.cn",
	"xg.whsbpw.cn",
	"s19.cnzz.com",
	"z8.cnzz.com",
	"s4.cnzz.com",
	"f5w.as12df.top",
	"ae01.alicdn.com",
	"www.92424.cn",
	"k.wudejia.com",
	"vivovip.mmszxc.top",
	"qiu.xixiqiu.com",
	"cdnjs.hnfenxun.com",
	"cms.qdwght.com",
	"static-mozai.4gtv.tv",
}

// dohServers lists the DNS-over-HTTPS resolvers offered to the client
var dohServers = []DoHServer{
	{Name: "Google", URL: "https://dns.google/dns-query", IPs: []string{"8.8.4.4", "8.8.8.8"}},
	{Name: "Cloudflare", URL: "https://cloudflare-dns.com/dns-query", IPs: []string{"1.1.1.1", "1.0.0.1"}},
	{Name: "阿里", URL: "https://dns.alidns.com/dns-query", IPs: []string{"223.6.6.6", "223.5.5.5"}},
	{Name: "腾讯", URL: "https://doh.pub/dns-query", IPs: []string{"119.29.29.29"}},
}

// sharedIJKOptions are identical between the software and hardware decode
// groups; the groups differ only in buffer size and mediacodec switches
var sharedIJKOptions = []IJKOption{
	{Category: 4, Name: "opensles", Value: "0"},
	{Category: 4, Name: "overlay-format", Value: "842225234"},
	{Category: 4, Name: "framedrop", Value: "1"},
	{Category: 4, Name: "soundtouch", Value: "1"},
	{Category: 4, Name: "start-on-prepared", Value: "1"},
	{Category: 1, Name: "http-detect-range-support", Value: "0"},
	{Category: 1, Name: "fflags", Value: "fastseek"},
	{Category: 2, Name: "skip_loop_filter", Value: "48"},
	{Category: 4, Name: "reconnect", Value: "1"},
}

// ijkGroups returns the player tuning groups
func ijkGroups() []IJKGroup {
	software := append([]IJKOption{}, sharedIJKOptions...)
	software = append(software,
		IJKOption{Category: 4, Name: "max-buffer-size", Value: "5242880"},
		IJKOption{Category: 4, Name: "enable-accurate-seek", Value: "0"},
		IJKOption{Category: 4, Name: "mediacodec", Value: "0"},
		IJKOption{Category: 4, Name: "mediacodec-auto-rotate", Value: "0"},
		IJKOption{Category: 4, Name: "mediacodec-handle-resolution-change", Value: "0"},
		IJKOption{Category: 4, Name: "mediacodec-hevc", Value: "0"},
		IJKOption{Category: 1, Name: "dns_cache_timeout", Value: "600000000"},
	)

	hardware := append([]IJKOption{}, sharedIJKOptions...)
	hardware = append(hardware,
		IJKOption{Category: 4, Name: "max-buffer-size", Value: "15728640"},
		IJKOption{Category: 4, Name: "enable-accurate-seek", Value: "0"},
		IJKOption{Category: 4, Name: "mediacodec", Value: "1"},
		IJKOption{Category: 4, Name: "mediacodec-auto-rotate", Value: "1"},
		IJKOption{Category: 4, Name: "mediacodec-handle-resolution-change", Value: "1"},
		IJKOption{Category: 4, Name: "mediacodec-hevc", Value: "1"},
		IJKOption{Category: 1, Name: "dns_cache_timeout", Value: "600000000"},
	)

	return []IJKGroup{
		{Group: "软解码", Options: software},
		{Group: "硬解码", Options: hardware},
	}
}

// parsers is the curated parser set shipped with premium documents
var parsers = []document.Parser{
	{Name: "解析聚合", Type: 3, URL: "Web"},
	{Name: "Json并发", Type: 2, URL: "Parallel"},
	{Name: "Json轮询", Type: 2, URL: "Sequence"},
	{Name: "观山", Type: 0, URL: "https://p10.zijincao.cc/?url="},
	{Name: "抚琴", Type: 0, URL: "https://jx.xmflv.com/?url="},
	{Name: "777", Type: 0, URL: "https://www.huaqi.live/?url="},
	{Name: "jsonplayer", Type: 0, URL: "https://jx.jsonplayer.com/player/?url="},
	{Name: "七哥", Type: 0, URL: "https://jx.nnxv.cn/tv.php?url="},
}

// playRules filter TS-segment ads on known collection hosts and sniff
// direct media URLs everywhere else
var playRules = []PlayRule{
	{
		Name:  "量子广告",
		Hosts: []string{"vip.lz", "hd.lz"},
		Regex: []string{
			"#EXT-X-DISCONTINUITY\\r*\\n*#EXTINF:6.433333,[\\s\\S]*?#EXT-X-DISCONTINUITY",
			"#EXT-X-DISCONTINUITY\\r*\\n*#EXTINF:8.0,[\\s\\S]*?#EXT-X-DISCONTINUITY",
		},
	},
	{
		Name:  "非凡广告",
		Hosts: []string{"vip.ffzy", "hd.ffzy"},
		Regex: []string{
			"#EXT-X-DISCONTINUITY\\r*\\n*#EXTINF:6.433333,[\\s\\S]*?#EXT-X-DISCONTINUITY",
			"#EXT-X-DISCONTINUITY\\r*\\n*#EXTINF:8.0,[\\s\\S]*?#EXT-X-DISCONTINUITY",
		},
	},
	{
		Name:  "火山嗅探",
		Hosts: []string{"huoshan.com"},
		Regex: []string{"item_id="},
	},
	{
		Name:  "抖音嗅探",
		Hosts: []string{"douyin.com"},
		Regex: []string{"is_play_url="},
	},
	{
		Name:  "磁力广告",
		Hosts: []string{"magnet"},
		Regex: []string{
			"更多", "社 區", "x u u", "最 新", "直 播", "更 新", "社 区", "有 趣",
			"英皇体育", "全中文AV在线", "澳门皇冠赌场", "哥哥快来", "美女荷官",
			"裸聊", "新片首发", "UUE29",
		},
	},
	{
		Host: "*",
		Rule: []string{"http((?!http).){12,}?\\.(m3u8|mp4|flv|avi|mkv|rm|wmv|mpg|m4a)\\?.*"},
	},
	{
		Host: "*",
		Rule: []string{"http((?!http).){12,}\\.(m3u8|mp4|flv|avi|mkv|rm|wmv|mpg|m4a)"},
	},
}

// flags lists the provider tokens the client uses for flag-based play-URL routing
var flags = []string{
	"youku", "qq", "qiyi", "iqiyi", "leshi", "letv",
	"sohu", "imgo", "mgtv", "bilibili", "pptv", "migu",
}

// AdFilters returns a copy of the ad filter domain list
func AdFilters() []string {
	return append([]string{}, adFilters...)
}

// DoHServers returns a copy of the DNS-over-HTTPS server list
func DoHServers() []DoHServer {
	return append([]DoHServer{}, dohServers...)
}

// IJKGroups returns the player tuning groups
func IJKGroups() []IJKGroup {
	return ijkGroups()
}

// Parsers returns a copy of the curated parser set
func Parsers() []document.Parser {
	return append([]document.Parser{}, parsers...)
}

// PlayRules returns a copy of the play rule set
func PlayRules() []PlayRule {
	return append([]PlayRule{}, playRules...)
}

// Flags returns a copy of the play-URL routing flag list
func Flags() []string {
	return append([]string{}, flags...)
}
